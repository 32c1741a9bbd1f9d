package client

import (
	"time"

	"httpc/content"
	"httpc/transfer"
	"httpc/transport"
	"httpc/wire"
)

// Options configure a Client. Zero-value sub-options fall back to their
// defaults at construction.
type Options struct {
	// Timeout bounds a whole exchange, from writing the request to
	// reading the last body byte. Zero means no deadline.
	Timeout time.Duration
	// UserAgent is sent when the request carries no User-Agent header.
	UserAgent string

	Connect transport.DialOptions
	Encode  wire.EncodeOptions
	Read    ReadOptions

	// AutoDecompress advertises Accept-Encoding on requests and
	// unwinds Content-Encoding on responses.
	AutoDecompress bool
	// StrictEncodings fails on unknown content codings instead of
	// passing the body through undecoded.
	StrictEncodings bool
	// DecodeCharset converts the body to UTF-8 according to the
	// Content-Type charset parameter.
	DecodeCharset bool

	// ExtraCoders extends the supported transfer codings.
	ExtraCoders []transfer.Coder
	// ExtraDecompressors extends the supported content codings.
	ExtraDecompressors []content.Decompressor
}

var DefaultOptions = Options{
	UserAgent:      "httpc/0.1",
	Connect:        transport.DefaultDialOptions,
	Encode:         wire.DefaultEncodeOptions,
	Read:           DefaultReadOptions,
	AutoDecompress: true,
}
