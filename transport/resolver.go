package transport

import (
	"context"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// NetResolver resolves through the platform resolver.
type NetResolver struct {
	// Resolver overrides [net.DefaultResolver] when set.
	Resolver *net.Resolver
}

var _ Resolver = NetResolver{}

func (nr NetResolver) LookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	r := nr.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	ipAddrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup for host(%s) failed", host)
	}

	addrs := make([]netip.Addr, 0, len(ipAddrs))
	for _, ipAddr := range ipAddrs {
		if addr, ok := netip.AddrFromSlice(ipAddr.IP); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}

	if len(addrs) == 0 {
		return nil, errors.Wrapf(ErrHostNotFound, "%q", host)
	}

	return addrs, nil
}
