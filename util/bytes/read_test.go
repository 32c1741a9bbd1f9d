package bytesutil

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadUntil(t *testing.T) {
	sample := []byte("Hello, World!")

	testcases := []struct {
		desc     string
		delim    []byte
		expected []byte
		wantErr  error
	}{
		{
			desc:     "sample",
			delim:    []byte("Wo"),
			expected: []byte("Hello, Wo"),
		},
		{
			desc:     "delimiter spanning reads",
			delim:    []byte("o, W"),
			expected: []byte("Hello, W"),
		},
		{
			desc:    "not found",
			delim:   []byte("Bye!"),
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewReader(sample))
			b, err := ReadUntil(r, tc.delim)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}
