package wire

import (
	"bytes"
	"strconv"

	"httpc/util/rule"

	"github.com/pkg/errors"
)

// Head is a parsed status line together with its header block.
type Head struct {
	StatusLine
	Headers []Field
}

// HeadParser recognizes a complete response head in an accumulated byte
// prefix. It is incremental: when the prefix does not yet contain a full
// head it reports (nil, 0, nil) and must be re-invoked once more bytes
// of the same stream have been accumulated.
//
// On success n is the number of bytes consumed, including the empty
// line terminating the header block. Bytes past n belong to the body.
type HeadParser interface {
	Parse(b []byte) (head *Head, n int, err error)
}

var (
	ErrMalformedStatusLine = errors.New("status line is malformed")
	ErrMalformedFieldLine  = errors.New("field line is malformed")
)

// ResponseHeadParser is the default [HeadParser].
type ResponseHeadParser struct{}

var _ HeadParser = ResponseHeadParser{}

var headTerm = []byte("\r\n\r\n")

func (ResponseHeadParser) Parse(b []byte) (*Head, int, error) {
	// An empty line can be received before the status line.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
	start := 0
	for bytes.HasPrefix(b[start:], rule.CRLF) {
		start += len(rule.CRLF)
	}

	end := bytes.Index(b[start:], headTerm)
	if end < 0 {
		// The head is not complete yet.
		return nil, 0, nil
	}

	block := b[start : start+end]
	consumed := start + end + len(headTerm)

	lines := bytes.Split(block, rule.CRLF)

	statLine, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, 0, errors.Wrapf(ErrMalformedStatusLine, "%v", err)
	}

	headers := make([]Field, 0, len(lines)-1)
	for _, fieldLine := range lines[1:] {
		field, err := ParseField(fieldLine)
		if err != nil {
			return nil, 0, errors.Wrapf(ErrMalformedFieldLine, "%v", err)
		}
		headers = append(headers, field)
	}

	return &Head{StatusLine: statLine, Headers: headers}, consumed, nil
}

func parseStatusLine(line []byte) (StatusLine, error) {
	parts := bytes.SplitN(line, []byte{rule.SP}, 3)
	if len(parts) < 2 {
		return StatusLine{}, errors.New("status line is missing parts")
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return StatusLine{}, errors.Wrap(err, "parsing version")
	}

	statusCodeStr := string(parts[1])
	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 64)
	if err != nil || len(statusCodeStr) != 3 {
		return StatusLine{}, errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	reasonPhrase := ""
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	return StatusLine{Version: ver, StatusCode: uint(statusCode), ReasonPhrase: reasonPhrase}, nil
}
