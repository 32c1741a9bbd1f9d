package content

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestCharsetOf(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected string
	}{
		{
			desc:     "simple",
			input:    "text/html; charset=utf-8",
			expected: "utf-8",
		},
		{
			desc:     "quoted",
			input:    `text/plain; charset="ISO-8859-1"`,
			expected: "iso-8859-1",
		},
		{
			desc:     "among other parameters",
			input:    "multipart/form-data; boundary=x; charset=utf-8",
			expected: "utf-8",
		},
		{
			desc:     "absent",
			input:    "application/octet-stream",
			expected: "",
		},
		{
			desc:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, CharsetOf(tc.input))
		})
	}
}

func TestHTMLIndexDecoder(t *testing.T) {
	// "héllo" in ISO-8859-1.
	latin1, err := charmap.ISO8859_1.NewEncoder().String("héllo")
	require.NoError(t, err)

	testcases := []struct {
		desc     string
		input    string
		charset  string
		expected string
	}{
		{
			desc:     "latin-1 is converted",
			input:    latin1,
			charset:  "iso-8859-1",
			expected: "héllo",
		},
		{
			desc:     "utf-8 passes through",
			input:    "héllo",
			charset:  "utf-8",
			expected: "héllo",
		},
		{
			desc:     "empty charset passes through",
			input:    "plain",
			charset:  "",
			expected: "plain",
		},
		{
			desc:     "unknown charset passes through",
			input:    "plain",
			charset:  "x-unknown",
			expected: "plain",
		},
	}

	var decoder HTMLIndexDecoder
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r, err := decoder.NewReader(strings.NewReader(tc.input), tc.charset)
			require.NoError(t, err)

			b, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(b))
		})
	}
}

func TestPipelineDecodeCharset(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("café")
	require.NoError(t, err)

	pipeline := NewPipeline(nil, nil)
	r, err := pipeline.DecodeCharset(strings.NewReader(latin1), "text/plain; charset=iso-8859-1")
	require.NoError(t, err)

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "café", string(b))
}
