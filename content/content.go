// Package content implements decoding of message content:
// decompression, charset conversion and structured codecs.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4
package content

import (
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Decompressor removes one content coding from a stream.
type Decompressor interface {
	Encoding() string
	NewReader(r io.Reader) (io.Reader, error)
}

var ErrUnsupportedEncoding = errors.New("content encoding is unsupported")

// Pipeline applies content decoding stages in order:
// decompression first, then charset conversion.
type Pipeline struct {
	decompressors map[string]Decompressor
	charset       CharsetDecoder
}

// NewPipeline creates a pipeline with gzip, deflate and zstd built in.
// Custom decompressors take precedence over built-ins with the same coding.
func NewPipeline(customs []Decompressor, charset CharsetDecoder) *Pipeline {
	if charset == nil {
		charset = HTMLIndexDecoder{}
	}

	p := &Pipeline{charset: charset}
	p.decompressors = map[string]Decompressor{
		"gzip":    gzipDecompressor{},
		"deflate": flateDecompressor{},
		"zstd":    zstdDecompressor{},
	}

	for _, d := range customs {
		p.decompressors[strings.ToLower(d.Encoding())] = d
	}

	return p
}

// Decompress unwinds content codings in reverse order of application.
// An unknown coding leaves the stream untouched, unless strict is set,
// in which case it fails with [ErrUnsupportedEncoding].
func (p *Pipeline) Decompress(r io.Reader, encodings []string, strict bool) (io.Reader, error) {
	for idx := len(encodings) - 1; idx >= 0; idx-- {
		enc := strings.ToLower(strings.TrimFunc(encodings[idx], func(r rune) bool {
			return r == ' ' || r == '\t'
		}))

		if enc == "" || enc == "identity" {
			continue
		}

		d, ok := p.decompressors[enc]
		if !ok {
			if strict {
				return nil, errors.Wrapf(ErrUnsupportedEncoding, "%q", enc)
			}
			// An unknown coding cannot be unwound, and neither can
			// anything beneath it. Hand the stream over as-is.
			return r, nil
		}

		var err error
		if r, err = d.NewReader(r); err != nil {
			return nil, errors.Wrapf(err, "applying %q decoder", enc)
		}
	}

	return r, nil
}

// DecodeCharset converts the stream to UTF-8 based on the charset
// parameter of the given Content-Type value. Absent or unrecognized
// charsets fall back to the identity conversion.
func (p *Pipeline) DecodeCharset(r io.Reader, contentType string) (io.Reader, error) {
	return p.charset.NewReader(r, CharsetOf(contentType))
}

type gzipDecompressor struct{}

func (gzipDecompressor) Encoding() string { return "gzip" }

func (gzipDecompressor) NewReader(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

type flateDecompressor struct{}

func (flateDecompressor) Encoding() string { return "deflate" }

func (flateDecompressor) NewReader(r io.Reader) (io.Reader, error) {
	return flate.NewReader(r), nil
}

type zstdDecompressor struct{}

func (zstdDecompressor) Encoding() string { return "zstd" }

func (zstdDecompressor) NewReader(r io.Reader) (io.Reader, error) {
	// Concurrency 1 keeps decoding synchronous so no goroutine
	// outlives the body.
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
