package content

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Codec encodes and decodes structured documents.
type Codec interface {
	MediaType() string
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}

type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) MediaType() string { return "application/json" }

func (JSONCodec) Encode(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "encoding json")
	}
	return nil
}

func (JSONCodec) Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "decoding json")
	}
	return nil
}
