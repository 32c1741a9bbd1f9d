package client

import (
	"io"

	"github.com/pkg/errors"

	"httpc/content"
	"httpc/wire"
)

// Response is the result of an exchange. Body streams from the
// connection; closing it closes the connection. The convenience
// accessors consume the whole body and close it.
type Response struct {
	Version      wire.Version
	StatusCode   uint
	ReasonPhrase string
	Headers      Headers

	Body io.ReadCloser

	reader  *ResponseReader
	content *content.Pipeline
	codec   content.Codec

	// charsetDecoded marks that Body already streams UTF-8, so Text
	// must not convert a second time.
	charsetDecoded bool
}

// Trailers returns trailer fields received after a chunked body. Only
// populated once the body is consumed.
func (r *Response) Trailers() []wire.Field { return r.reader.Trailers() }

func (r *Response) Close() error { return r.Body.Close() }

// Bytes reads the remaining body and closes it.
func (r *Response) Bytes() ([]byte, error) {
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}
	return b, nil
}

// Text reads the remaining body as text, converted to UTF-8 according
// to the Content-Type charset parameter, and closes it.
func (r *Response) Text() (string, error) {
	defer r.Body.Close()

	body := io.Reader(r.Body)
	if !r.charsetDecoded {
		contentType, _ := r.Headers.Get("Content-Type")
		decoded, err := r.content.DecodeCharset(body, contentType)
		if err != nil {
			return "", err
		}
		body = decoded
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(err, "reading body")
	}
	return string(b), nil
}

// JSON decodes the remaining body into v and closes it.
func (r *Response) JSON(v any) error {
	defer r.Body.Close()

	return r.codec.Decode(r.Body, v)
}
