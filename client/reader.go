package client

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"

	iolib "httpc/lib/io"
	"httpc/transfer"
	"httpc/wire"
)

var (
	// ErrHeaderTooLarge is returned when the response head does not fit
	// in the configured byte budget.
	ErrHeaderTooLarge = errors.New("response head exceeds byte budget")
	// ErrMalformedResponse is returned when the response head cannot be
	// parsed.
	ErrMalformedResponse = errors.New("malformed response")
)

// ReadOptions configure how a response is read off a connection.
type ReadOptions struct {
	// MaxHeadBytes bounds the status line and header block together.
	// Zero means no bound.
	MaxHeadBytes uint
	// ReadChunkSize is the size of individual reads from the connection.
	ReadChunkSize uint
	// Parser overrides the default head parser.
	Parser wire.HeadParser
}

var DefaultReadOptions = ReadOptions{
	MaxHeadBytes:  64 << 10,
	ReadChunkSize: 4 << 10,
}

type readState uint8

const (
	awaitingHead readState = iota
	headComplete
	streamingBody
	bodyDone
)

// ResponseReader incrementally reads a response off a byte stream. It
// accumulates reads until the head parser reports a complete head, then
// hands out a body reader framed the way the head declares. Bytes read
// past the head are yielded to the body before touching the stream
// again.
type ResponseReader struct {
	src      io.Reader
	parser   wire.HeadParser
	transfer *transfer.CodingApplier
	opts     ReadOptions

	state    readState
	buf      []byte
	head     *wire.Head
	body     io.Reader
	trailers []wire.Field
}

func NewResponseReader(src io.Reader, applier *transfer.CodingApplier, opts ReadOptions) *ResponseReader {
	if opts.ReadChunkSize == 0 {
		opts.ReadChunkSize = DefaultReadOptions.ReadChunkSize
	}
	if opts.Parser == nil {
		opts.Parser = wire.ResponseHeadParser{}
	}
	if applier == nil {
		applier = transfer.NewCodingApplier(nil)
	}

	return &ResponseReader{
		src:      src,
		parser:   opts.Parser,
		transfer: applier,
		opts:     opts,
	}
}

// ReadHead reads from the stream until the head is complete and parses
// it. Reads of any granularity work, down to one byte at a time. An EOF
// before the head completes is reported as io.ErrUnexpectedEOF.
func (rr *ResponseReader) ReadHead() (*wire.Head, error) {
	if rr.state != awaitingHead {
		return nil, errors.New("head is already read")
	}

	chunk := make([]byte, rr.opts.ReadChunkSize)
	for {
		head, n, err := rr.parser.Parse(rr.buf)
		if err != nil {
			// The size bound applies whether or not the block parses.
			if max := rr.opts.MaxHeadBytes; max > 0 && headLen(rr.buf) > max {
				return nil, ErrHeaderTooLarge
			}
			return nil, errors.Wrapf(ErrMalformedResponse, "%v", err)
		}
		if head != nil {
			if max := rr.opts.MaxHeadBytes; max > 0 && uint(n) > max {
				return nil, ErrHeaderTooLarge
			}
			rr.buf = rr.buf[n:]
			rr.head = head
			rr.state = headComplete
			return head, nil
		}

		// The accumulated bytes hold no complete head, so a buffer
		// already at the budget can never be satisfied.
		if max := rr.opts.MaxHeadBytes; max > 0 && uint(len(rr.buf)) >= max {
			return nil, ErrHeaderTooLarge
		}

		n, rerr := rr.src.Read(chunk)
		rr.buf = append(rr.buf, chunk[:n]...)
		if rerr != nil && n == 0 {
			if errors.Is(rerr, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, errors.Wrap(rerr, "reading response head")
		}
	}
}

// Body assembles the body reader according to the head:
// transfer codings when declared, otherwise Content-Length, otherwise
// everything until the connection closes.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func (rr *ResponseReader) Body() (io.Reader, error) {
	switch rr.state {
	case awaitingHead:
		return nil, errors.New("head is not read yet")
	case streamingBody, bodyDone:
		return rr.body, nil
	}

	headers := HeadersFrom(rr.head.Headers)
	raw := io.MultiReader(bytes.NewReader(rr.buf), rr.src)

	var body io.Reader
	if codings := transferCodings(&headers); len(codings) > 0 {
		decoded, err := rr.transfer.Decode(raw, codings, func(trailers []wire.Field) {
			rr.trailers = trailers
		})
		if err != nil {
			return nil, err
		}
		body = decoded
	} else if length, ok, err := contentLength(&headers); err != nil {
		return nil, err
	} else if ok {
		body = iolib.LimitReader(raw, length)
	} else {
		body = raw
	}

	rr.state = streamingBody
	rr.body = &bodyTracker{rr: rr, r: body}
	return rr.body, nil
}

// Trailers returns the trailer fields received after a chunked body,
// if any. Only populated once the body is consumed.
func (rr *ResponseReader) Trailers() []wire.Field { return rr.trailers }

// Done reports whether the body has been fully consumed.
func (rr *ResponseReader) Done() bool { return rr.state == bodyDone }

// bodyTracker flips the reader state once the framed body is exhausted.
type bodyTracker struct {
	rr *ResponseReader
	r  io.Reader
}

func (t *bodyTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if errors.Is(err, io.EOF) {
		t.rr.state = bodyDone
	}
	return n, err
}

var headTerminator = []byte("\r\n\r\n")

// headLen reports the size of the head block up to and including its
// terminating empty line, or 0 when the terminator is not present yet.
func headLen(buf []byte) uint {
	idx := bytes.Index(buf, headTerminator)
	if idx < 0 {
		return 0
	}
	return uint(idx + len(headTerminator))
}

func transferCodings(headers *Headers) []transfer.Coding {
	values := headers.Values("Transfer-Encoding")
	codings := make([]transfer.Coding, 0, len(values))
	for _, v := range values {
		codings = append(codings, transfer.Coding(v))
	}
	return codings
}

func contentLength(headers *Headers) (length uint, ok bool, err error) {
	value, ok := headers.Get("Content-Length")
	if !ok {
		return 0, false, nil
	}

	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(ErrMalformedResponse, "content length %q: %v", value, err)
	}
	return uint(parsed), true, nil
}
