package content

import (
	"io"
	"strings"

	"httpc/util/rule"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CharsetDecoder converts a stream from a named charset to UTF-8.
type CharsetDecoder interface {
	// NewReader wraps r with a decoder for the given charset.
	// An empty or unknown charset yields r unchanged.
	NewReader(r io.Reader, charset string) (io.Reader, error)
}

// HTMLIndexDecoder is the default [CharsetDecoder], backed by the
// WHATWG encoding index of golang.org/x/text.
type HTMLIndexDecoder struct{}

var _ CharsetDecoder = HTMLIndexDecoder{}

func (HTMLIndexDecoder) NewReader(r io.Reader, charset string) (io.Reader, error) {
	switch charset {
	case "", "utf-8", "utf8", "us-ascii":
		return r, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		// Permissive fallback: unrecognized charsets pass through.
		return r, nil
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}

// CharsetOf extracts the charset parameter from a Content-Type value.
// It returns "" when the parameter is absent.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.3-9
func CharsetOf(contentType string) string {
	parts := strings.Split(contentType, ";")
	for _, part := range parts[1:] {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}

		k = strings.TrimFunc(k, rule.IsWhitespace)
		if !strings.EqualFold(k, "charset") {
			continue
		}

		v = strings.TrimFunc(v, rule.IsWhitespace)
		v = string(rule.Unquote([]byte(v)))

		return strings.ToLower(v)
	}

	return ""
}
