package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"

	"github.com/pkg/errors"
)

// TLSProvider performs the TLS handshake over an established connection.
type TLSProvider interface {
	// Handshake wraps conn and completes the handshake, validating the
	// peer certificate for serverName. On failure the caller owns
	// closing conn.
	Handshake(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error)
}

// TrustSource selects where peer certificates are validated against.
type TrustSource uint8

const (
	// TrustSystem validates against the platform-native root store.
	TrustSystem TrustSource = iota
	// TrustCustom validates against a caller-supplied root pool.
	TrustCustom
)

var ErrMissingRoots = errors.New("custom trust selected but no roots supplied")

// StdTLS is the default [TLSProvider], backed by crypto/tls.
type StdTLS struct {
	Trust TrustSource

	// Roots is the trust anchor set when Trust is [TrustCustom].
	Roots *x509.CertPool

	// Config, when set, is used as-is (cloned, with ServerName filled
	// in if empty) and the fields above are ignored.
	Config *tls.Config
}

var _ TLSProvider = (*StdTLS)(nil)

func (t *StdTLS) Handshake(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	cfg, err := t.config(serverName)
	if err != nil {
		return nil, err
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, errors.Wrap(err, "performing handshake")
	}

	return tlsConn, nil
}

func (t *StdTLS) config(serverName string) (*tls.Config, error) {
	if t.Config != nil {
		cfg := t.Config.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = serverName
		}
		return cfg, nil
	}

	cfg := &tls.Config{ServerName: serverName}

	switch t.Trust {
	case TrustSystem:
		// Leaving RootCAs nil selects the platform store.
	case TrustCustom:
		if t.Roots == nil {
			return nil, ErrMissingRoots
		}
		cfg.RootCAs = t.Roots
	}

	return cfg, nil
}
