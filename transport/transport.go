// Package transport establishes the byte streams an exchange runs on:
// plain TCP or TLS-wrapped TCP connections to a host and port.
package transport

import (
	"context"
	"net/netip"

	"github.com/pkg/errors"
)

// ConnectError reports a failure to establish the underlying connection
// (resolution failure, refusal, or connect timeout).
type ConnectError struct{ Err error }

func (e *ConnectError) Error() string { return "connect: " + e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// TLSError reports a failed TLS handshake or certificate validation.
// It is distinct from [ConnectError] so callers can tell the phases apart.
type TLSError struct{ Err error }

func (e *TLSError) Error() string { return "tls: " + e.Err.Error() }
func (e *TLSError) Unwrap() error { return e.Err }

var ErrHostNotFound = errors.New("host not found")

// Resolver turns a host name into IP addresses.
type Resolver interface {
	LookupIP(ctx context.Context, host string) (addrs []netip.Addr, err error)
}

// MapResolver resolves from a fixed table. Useful for tests.
type MapResolver struct {
	set map[string][]netip.Addr
}

var _ Resolver = (*MapResolver)(nil)

func NewMapResolver(set map[string][]netip.Addr) *MapResolver {
	clone := make(map[string][]netip.Addr, len(set))
	for k, v := range set {
		clone[k] = append([]netip.Addr(nil), v...)
	}
	return &MapResolver{set: clone}
}

func (m *MapResolver) LookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, ok := m.set[host]
	if !ok {
		return nil, errors.Wrapf(ErrHostNotFound, "%q", host)
	}
	return addrs, nil
}

func (m *MapResolver) Set(host string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[host] = addrs
}

func (m *MapResolver) Del(host string) { delete(m.set, host) }
