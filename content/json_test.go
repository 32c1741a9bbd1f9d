package content

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var codec JSONCodec
	assert.Equal(t, "application/json", codec.MediaType())

	buf := bytes.NewBuffer(nil)
	require.NoError(t, codec.Encode(buf, payload{Name: "cat", Count: 3}))
	assert.JSONEq(t, `{"name":"cat","count":3}`, buf.String())

	var decoded payload
	require.NoError(t, codec.Decode(buf, &decoded))
	assert.Equal(t, payload{Name: "cat", Count: 3}, decoded)
}

func TestJSONCodecDecodeError(t *testing.T) {
	var codec JSONCodec

	var v map[string]any
	assert.Error(t, codec.Decode(strings.NewReader("{not json"), &v))
}
