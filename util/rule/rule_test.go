package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected bool
	}{
		{desc: "field name", input: "Content-Length", expected: true},
		{desc: "tchar specials", input: "x!#$%&'*+-.^_`|~9", expected: true},
		{desc: "empty", input: "", expected: false},
		{desc: "space", input: "two words", expected: false},
		{desc: "separator", input: "a:b", expected: false},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidToken(tc.input))
		})
	}
}

func TestUnquote(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected []byte
	}{
		{desc: "not quoted", input: []byte("plain"), expected: []byte("plain")},
		{desc: "quoted", input: []byte(`"hello"`), expected: []byte("hello")},
		{desc: "escaped quote", input: []byte(`"say \"hi\""`), expected: []byte(`say "hi"`)},
		{desc: "lone quote", input: []byte(`"`), expected: []byte(`"`)},
		{desc: "empty", input: []byte(""), expected: []byte("")},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Unquote(tc.input))
		})
	}
}

func TestIsWhitespace(t *testing.T) {
	for _, ws := range Whitespaces {
		assert.True(t, IsWhitespace(rune(ws)))
	}
	assert.False(t, IsWhitespace('a'))
	assert.False(t, IsWhitespace('\n'))
}
