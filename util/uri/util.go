package uri

import (
	"strings"

	"github.com/pkg/errors"
)

func containsCTL(s string) bool {
	for _, c := range s {
		if c < ' ' || c == 0x7f {
			return true
		}
	}
	return false
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func assertValidScheme(scheme string) error {
	if len(scheme) == 0 {
		return errors.New("scheme is empty")
	}

	if !isAlpha(scheme[0]) {
		return errors.New("scheme should start with ALPHA")
	}

	for i := 1; i < len(scheme); i++ {
		c := scheme[i]
		if isAlpha(c) || isDigit(c) {
			continue
		}
		switch c {
		case '+', '-', '.':
			continue
		}
		return errors.Errorf("scheme contains invalid character: %q", c)
	}

	return nil
}

// AssertValidHost checks host is a valid reg-name, IPv4 address or IP literal.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
func AssertValidHost(host string) error {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return errors.New("IP literal is missing ']'")
		}
		inner := host[1 : len(host)-1]
		if len(inner) == 0 {
			return errors.New("IP literal is empty")
		}
		for i := 0; i < len(inner); i++ {
			c := inner[i]
			if isHexDigit(c) || c == ':' || c == '.' {
				continue
			}
			return errors.Errorf("IP literal contains invalid character: %q", c)
		}
		return nil
	}

	for i := 0; i < len(host); i++ {
		c := host[i]
		if isAlpha(c) || isDigit(c) {
			continue
		}
		switch c {
		case '-', '.', '_', '~', '%',
			'!', '$', '&', '\'', '(', ')',
			'*', '+', ',', ';', '=':
			continue
		}
		return errors.Errorf("host contains invalid character: %q", c)
	}

	return nil
}

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
