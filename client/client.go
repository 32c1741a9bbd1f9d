package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"httpc/content"
	"httpc/transfer"
	"httpc/transport"
	"httpc/wire"
)

// Client performs blocking request/response exchanges over fresh
// connections, one connection per exchange. It is safe for concurrent
// use; every Send opens and closes its own connection.
type Client struct {
	dialer   *transport.Dialer
	transfer *transfer.CodingApplier
	content  *content.Pipeline
	codec    content.Codec

	opts   Options
	logger *slog.Logger
	clock  clock.Clock
}

// New builds a client. A nil dialer gets a default one using the
// nameservers and roots of the system, a nil logger discards logs and
// a nil clock uses the real one.
func New(dialer *transport.Dialer, logger *slog.Logger, clk clock.Clock, opts Options) *Client {
	if clk == nil {
		clk = clock.New()
	}
	if dialer == nil {
		dialer = transport.NewDialer(nil, nil, clk, opts.Connect)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions.UserAgent
	}

	return &Client{
		dialer:   dialer,
		transfer: transfer.NewCodingApplier(opts.ExtraCoders),
		content:  content.NewPipeline(opts.ExtraDecompressors, nil),
		codec:    content.JSONCodec{},
		opts:     opts,
		logger:   logger,
		clock:    clk,
	}
}

// Send performs one exchange: connect, write the request, read the
// response head and hand back the framed body. Failures carry the
// phase they occurred in via *Error. The connection stays open until
// the response body is closed; on failure it is closed here.
func (c *Client) Send(ctx context.Context, request *Request) (*Response, error) {
	scheme, host, port, err := targetOf(request)
	if err != nil {
		return nil, phased(PhaseConnect, err)
	}

	headers := request.Headers.Clone()
	c.prepareHeaders(&headers, request, host, port, scheme)

	c.logger.DebugContext(ctx, "opening connection",
		slog.String("host", host), slog.Uint64("port", uint64(port)))

	conn, err := c.dialer.Open(ctx, host, port, scheme == "https")
	if err != nil {
		var tlsErr *transport.TLSError
		if errors.As(err, &tlsErr) {
			return nil, phased(PhaseTLS, err)
		}
		return nil, phased(PhaseConnect, err)
	}

	done := false
	defer func() {
		if !done {
			conn.Close()
		}
	}()

	if c.opts.Timeout > 0 {
		if err := conn.SetDeadline(c.clock.Now().Add(c.opts.Timeout)); err != nil {
			return nil, phased(PhaseConnect, errors.Wrap(err, "setting deadline"))
		}
	}

	if err := c.writeRequest(conn, request, &headers); err != nil {
		return nil, phased(PhaseWrite, err)
	}

	reader := NewResponseReader(conn, c.transfer, c.opts.Read)

	head, err := reader.ReadHead()
	if err != nil {
		return nil, phased(PhaseRead, err)
	}

	c.logger.DebugContext(ctx, "response head received",
		slog.Uint64("status", uint64(head.StatusCode)))

	body, err := reader.Body()
	if err != nil {
		return nil, phased(PhaseRead, err)
	}

	respHeaders := HeadersFrom(head.Headers)

	if c.opts.AutoDecompress {
		encodings := respHeaders.Values("Content-Encoding")
		body, err = c.content.Decompress(body, encodings, c.opts.StrictEncodings)
		if err != nil {
			return nil, phased(PhaseDecode, err)
		}
	}
	if c.opts.DecodeCharset {
		contentType, _ := respHeaders.Get("Content-Type")
		body, err = c.content.DecodeCharset(body, contentType)
		if err != nil {
			return nil, phased(PhaseDecode, err)
		}
	}

	done = true
	return &Response{
		Version:      head.Version,
		StatusCode:   head.StatusCode,
		ReasonPhrase: head.ReasonPhrase,
		Headers:      respHeaders,
		Body:         &bodyCloser{r: body, conn: conn},
		reader:       reader,
		content:      c.content,
		codec:        c.codec,

		charsetDecoded: c.opts.DecodeCharset,
	}, nil
}

func (c *Client) writeRequest(conn net.Conn, request *Request, headers *Headers) error {
	body := request.Body
	if body != nil && request.ContentLength == nil && !headers.Has("Transfer-Encoding") {
		headers.Add("Transfer-Encoding", string(transfer.CodingChunked))

		pr := c.chunkBody(body)
		// Closing the read end unblocks the producer if the write
		// failed before the body was fully consumed.
		defer pr.Close()
		body = pr
	}

	encoder := wire.NewRequestEncoder(conn, c.opts.Encode)
	return encoder.Encode(wire.Request{
		RequestLine: wire.RequestLine{
			Method:  request.Method,
			Target:  request.Target.RequestTarget(),
			Version: wire.Version{1, 1},
		},
		Headers: headers.Fields(),
		Body:    body,
	})
}

// chunkBody turns a body of unknown length into its chunked framing.
func (c *Client) chunkBody(body io.Reader) *io.PipeReader {
	pr, pw := io.Pipe()
	go func() {
		w, err := c.transfer.Encode(pw, []transfer.Coding{transfer.CodingChunked}, nil)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(w, body); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := w.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()
	return pr
}

// prepareHeaders fills in the fields every request needs. Fields the
// caller already set are left alone, except Connection, which is
// always "close" since connections are not reused.
func (c *Client) prepareHeaders(headers *Headers, request *Request, host string, port uint16, scheme string) {
	if !headers.Has("Host") {
		hostValue := host
		if port != defaultPort(scheme) {
			// An IPv6 literal host keeps the brackets of its authority,
			// so the port can be appended directly.
			hostValue = host + ":" + strconv.FormatUint(uint64(port), 10)
		}
		headers.Set("Host", hostValue)
	}
	headers.Set("Connection", "close")
	if !headers.Has("User-Agent") {
		headers.Set("User-Agent", c.opts.UserAgent)
	}
	if c.opts.AutoDecompress && !headers.Has("Accept-Encoding") {
		headers.Set("Accept-Encoding", "gzip, deflate, zstd")
	}
	if request.ContentLength != nil && !headers.Has("Content-Length") {
		headers.Set("Content-Length", strconv.FormatUint(uint64(*request.ContentLength), 10))
	}
}

func targetOf(request *Request) (scheme, host string, port uint16, err error) {
	scheme = strings.ToLower(request.Target.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", 0, errors.Wrapf(ErrUnsupportedScheme, "scheme: %q", request.Target.Scheme)
	}

	authority := request.Target.Authority
	if authority == nil || authority.Host == "" {
		return "", "", 0, ErrMissingAuthority
	}

	port = defaultPort(scheme)
	if authority.Port != nil {
		port = *authority.Port
	}
	return scheme, authority.Host, port, nil
}

func defaultPort(scheme string) uint16 {
	if scheme == "https" {
		return 443
	}
	return 80
}

// bodyCloser ties the lifetime of the connection to the body.
type bodyCloser struct {
	r    io.Reader
	conn net.Conn
}

func (b *bodyCloser) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *bodyCloser) Close() error               { return b.conn.Close() }
