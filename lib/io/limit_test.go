package iolib

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitReader(t *testing.T) {
	lr := LimitReader(strings.NewReader("HelloEXTRA"), 5)

	b, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(b))
	assert.Equal(t, uint(0), lr.N)

	// Exhausted limit keeps returning EOF.
	n, err := lr.Read(make([]byte, 1))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLimitReaderShortSource(t *testing.T) {
	lr := LimitReader(strings.NewReader("ab"), 5)

	b, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(b))
	assert.Equal(t, uint(3), lr.N)
}
