package transport

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type DialOptions struct {
	// ConnectTimeout bounds each single connection attempt.
	ConnectTimeout time.Duration

	// ConnectDelay is the stagger between attempts to different
	// addresses of the same host. The next attempt starts when the
	// previous one has neither succeeded nor failed within the delay.
	ConnectDelay time.Duration
}

var DefaultDialOptions = DialOptions{
	ConnectTimeout: 10 * time.Second,
	ConnectDelay:   500 * time.Millisecond,
}

// Dialer opens connections for exchanges. Each opened connection is
// exclusively owned by its caller.
type Dialer struct {
	resolver Resolver
	tls      TLSProvider
	clock    clock.Clock

	opts DialOptions
}

func NewDialer(resolver Resolver, tlsProvider TLSProvider, clk clock.Clock, opts DialOptions) *Dialer {
	if resolver == nil {
		resolver = NetResolver{}
	}
	if tlsProvider == nil {
		tlsProvider = &StdTLS{}
	}
	if clk == nil {
		clk = clock.New()
	}

	return &Dialer{
		resolver: resolver,
		tls:      tlsProvider,
		clock:    clk,
		opts:     opts,
	}
}

// Open establishes a connection to host:port, TLS-wrapped when useTLS
// is set. On failure no socket is left open, and the error is either a
// [*ConnectError] or a [*TLSError] depending on the failing step.
func (d *Dialer) Open(ctx context.Context, host string, port uint16, useTLS bool) (net.Conn, error) {
	conn, err := d.dial(ctx, host, port)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}

	if !useTLS {
		return conn, nil
	}

	tlsConn, err := d.tls.Handshake(ctx, conn, serverName(host))
	if err != nil {
		conn.Close()
		return nil, &TLSError{Err: err}
	}

	return tlsConn, nil
}

func (d *Dialer) dial(ctx context.Context, host string, port uint16) (net.Conn, error) {
	addrs, err := d.resolveAddrs(ctx, host)
	if err != nil {
		return nil, err
	}

	addrs = orderAddrs(addrs)

	if len(addrs) == 1 {
		return d.connect(ctx, addrs[0], port)
	}

	// Attempts to distinct addresses are staggered: a new one is
	// launched when the previous has not settled within ConnectDelay,
	// alternating address families.
	results := make(chan dialResult, len(addrs))
	pending := 0
	var firstErr error

	takeResult := func(res dialResult) (net.Conn, bool) {
		pending--
		if res.err == nil {
			go closeExtras(results, pending)
			return res.conn, true
		}
		if firstErr == nil {
			firstErr = res.err
		}
		return nil, false
	}

	for _, addr := range addrs {
		addr := addr
		go func() {
			conn, err := d.connect(ctx, addr, port)
			results <- dialResult{conn: conn, err: err}
		}()
		pending++

		delay := d.clock.Timer(d.opts.ConnectDelay)
		select {
		case res := <-results:
			delay.Stop()
			if conn, ok := takeResult(res); ok {
				return conn, nil
			}
		case <-delay.C:
		case <-ctx.Done():
			delay.Stop()
			go closeExtras(results, pending)
			return nil, ctx.Err()
		}
	}

	for pending > 0 {
		select {
		case res := <-results:
			if conn, ok := takeResult(res); ok {
				return conn, nil
			}
		case <-ctx.Done():
			go closeExtras(results, pending)
			return nil, ctx.Err()
		}
	}

	return nil, firstErr
}

type dialResult struct {
	conn net.Conn
	err  error
}

// closeExtras drains attempts that lost the race and closes their
// connections so no descriptor leaks.
func closeExtras(results <-chan dialResult, pending int) {
	for i := 0; i < pending; i++ {
		if res := <-results; res.err == nil {
			res.conn.Close()
		}
	}
}

func (d *Dialer) connect(ctx context.Context, addr netip.Addr, port uint16) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := net.JoinHostPort(addr.String(), strconv.FormatUint(uint64(port), 10))

	conn, err := net.DialTimeout("tcp", target, d.opts.ConnectTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", target)
	}

	return conn, nil
}

func (d *Dialer) resolveAddrs(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, ok := parseIPAddr(host); ok {
		return []netip.Addr{addr}, nil
	}

	return d.resolver.LookupIP(ctx, host)
}

func parseIPAddr(host string) (netip.Addr, bool) {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr, true
}

// orderAddrs interleaves address families, IPv6 first.
func orderAddrs(addrs []netip.Addr) []netip.Addr {
	var v6, v4 []netip.Addr
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			v4 = append(v4, addr)
		} else {
			v6 = append(v6, addr)
		}
	}

	ordered := make([]netip.Addr, 0, len(addrs))
	for len(v6) > 0 || len(v4) > 0 {
		if len(v6) > 0 {
			ordered = append(ordered, v6[0])
			v6 = v6[1:]
		}
		if len(v4) > 0 {
			ordered = append(ordered, v4[0])
			v4 = v4[1:]
		}
	}

	return ordered
}

// serverName strips the brackets of an IPv6 literal for SNI purposes.
func serverName(host string) string {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}
