package client

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"httpc/content"
	"httpc/util/uri"
)

// Request describes one exchange to perform. Body may be nil for
// bodyless methods. When Body is set and ContentLength is nil, the body
// is sent with chunked transfer coding.
type Request struct {
	Method  string
	Target  uri.URI
	Headers Headers

	Body          io.Reader
	ContentLength *uint
}

// NewRequest parses the target and builds a request with no body.
func NewRequest(method, target string) (*Request, error) {
	parsed, err := uri.Parse(target)
	if err != nil {
		return nil, errors.Wrap(err, "parsing target")
	}
	return &Request{Method: method, Target: parsed}, nil
}

// SetBodyBytes attaches a fixed body with a known length.
func (r *Request) SetBodyBytes(body []byte) {
	length := uint(len(body))
	r.Body = bytes.NewReader(body)
	r.ContentLength = &length
}

func (r *Request) SetBodyString(body string) {
	length := uint(len(body))
	r.Body = strings.NewReader(body)
	r.ContentLength = &length
}

// SetBodyReader attaches a streaming body. A nil length sends the body
// with chunked transfer coding.
func (r *Request) SetBodyReader(body io.Reader, length *uint) {
	r.Body = body
	r.ContentLength = length
}

// SetBodyJSON encodes v as the body and sets the content type.
func (r *Request) SetBodyJSON(v any) error {
	codec := content.JSONCodec{}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, v); err != nil {
		return err
	}

	r.SetBodyBytes(buf.Bytes())
	r.Headers.Set("Content-Type", codec.MediaType())
	return nil
}
