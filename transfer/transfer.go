// Package transfer implements HTTP/1.1 transfer codings.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7
package transfer

import (
	"io"

	"httpc/wire"

	"github.com/pkg/errors"
)

type Coding string

const CodingChunked Coding = "chunked"

// Coder frames or unframes a byte stream for one transfer coding.
type Coder interface {
	Coding() Coding
	NewReader(r io.Reader) io.Reader
	NewWriter(w io.WriteCloser) io.WriteCloser
}

// CodingApplier applies a stack of transfer codings to body streams.
type CodingApplier struct{ coders map[Coding]Coder }

func NewCodingApplier(customs []Coder) *CodingApplier {
	ca := &CodingApplier{}
	ca.coders = map[Coding]Coder{
		CodingChunked: NewChunkedCoder(),
	}

	for _, coder := range customs {
		ca.coders[coder.Coding()] = coder
	}

	return ca
}

var ErrUnsupportedCoding = errors.New("coding is unsupported")

// Decode unwinds codings in reverse order of their application.
// If onTrailer is not nil, it is invoked with trailer fields once the
// chunked layer reaches its last chunk.
func (ca *CodingApplier) Decode(r io.Reader, codings []Coding, onTrailer func(f []wire.Field)) (io.Reader, error) {
	for idx := len(codings) - 1; idx >= 0; idx-- {
		coding := codings[idx]
		coder, ok := ca.coders[coding]
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedCoding, "%q", coding)
		}

		r = coder.NewReader(r)
		if coding == CodingChunked && onTrailer != nil {
			chunked := r.(*ChunkedReader)

			chunked.SetOnTrailerReceived(func(f []wire.Field) {
				if len(f) == 0 {
					return
				}
				onTrailer(f)
			})
		}
	}

	return r, nil
}

// Encode stacks coding writers so that writes are framed in order.
func (ca *CodingApplier) Encode(w io.WriteCloser, codings []Coding, sendTrailers func() []wire.Field) (io.WriteCloser, error) {
	for idx := len(codings) - 1; idx >= 0; idx-- {
		coding := codings[idx]
		coder, ok := ca.coders[coding]
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedCoding, "%q", coding)
		}

		w = coder.NewWriter(w)
		if coding == CodingChunked && sendTrailers != nil {
			chunked := w.(*ChunkedWriter)

			chunked.SetSendTrailers(sendTrailers)
		}
	}

	return w, nil
}
