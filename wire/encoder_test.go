package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncoder(t *testing.T) {
	testcases := []struct {
		desc     string
		request  Request
		opts     EncodeOptions
		expected string
	}{
		{
			desc: "bodyless",
			request: Request{
				RequestLine: RequestLine{
					Method:  "GET",
					Target:  "/index.html",
					Version: Version{1, 1},
				},
				Headers: []Field{
					{Name: []byte("Host"), Value: []byte("example.com")},
					{Name: []byte("Connection"), Value: []byte("close")},
				},
			},
			expected: "GET /index.html HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"Connection: close\r\n" +
				"\r\n",
		},
		{
			desc: "with body",
			request: Request{
				RequestLine: RequestLine{
					Method:  "POST",
					Target:  "/submit",
					Version: Version{1, 1},
				},
				Headers: []Field{
					{Name: []byte("Content-Length"), Value: []byte("5")},
				},
				Body: strings.NewReader("hello"),
			},
			expected: "POST /submit HTTP/1.1\r\n" +
				"Content-Length: 5\r\n" +
				"\r\n" +
				"hello",
		},
		{
			desc: "sole LF terminator",
			request: Request{
				RequestLine: RequestLine{
					Method:  "GET",
					Target:  "/",
					Version: Version{1, 1},
				},
			},
			opts:     EncodeOptions{UseSoleLF: true},
			expected: "GET / HTTP/1.1\n\n",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			encoder := NewRequestEncoder(buf, tc.opts)

			require.NoError(t, encoder.Encode(tc.request))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestRequestEncoderHeaderOrder(t *testing.T) {
	request := Request{
		RequestLine: RequestLine{Method: "GET", Target: "/", Version: Version{1, 1}},
		Headers: []Field{
			{Name: []byte("B"), Value: []byte("2")},
			{Name: []byte("A"), Value: []byte("1")},
			{Name: []byte("B"), Value: []byte("3")},
		},
	}

	buf := bytes.NewBuffer(nil)
	require.NoError(t, NewRequestEncoder(buf, DefaultEncodeOptions).Encode(request))

	expected := "GET / HTTP/1.1\r\n" +
		"B: 2\r\n" +
		"A: 1\r\n" +
		"B: 3\r\n" +
		"\r\n"
	assert.Equal(t, expected, buf.String())
}
