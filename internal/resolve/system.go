package resolve

import (
	"context"
	"net"
	"time"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

const resolverSystem = "system"

// SystemResolver uses the operating system's reverse lookup (hosts file,
// NSS, configured nameservers).
type SystemResolver struct {
	timeout  time.Duration
	resolver *net.Resolver
}

// NewSystemResolver creates a resolver backed by net.DefaultResolver.
func NewSystemResolver(timeout time.Duration) *SystemResolver {
	return &SystemResolver{timeout: timeout, resolver: net.DefaultResolver}
}

// ResolveName implements Resolver.
func (r *SystemResolver) ResolveName(ctx context.Context, address string) string {
	name, err := r.lookup(ctx, address)
	return collapse(resolverSystem, address, name, err)
}

func (r *SystemResolver) lookup(ctx context.Context, address string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.resolver.LookupAddr(ctx, address)
	if err != nil {
		return "", scanerrors.WrapResolveError("", "Reverse lookup failed", resolverSystem, address, err)
	}
	for _, name := range names {
		if n := normalizeName(name); n != "" {
			return n, nil
		}
	}
	return "", scanerrors.ErrNoRecord(resolverSystem, address)
}
