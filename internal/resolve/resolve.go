// Package resolve performs best-effort reverse name lookups for responsive hosts.
package resolve

//go:generate mockgen -source=resolve.go -destination=mocks/mock_resolve.go -package=mocks

import (
	"context"
	"strings"

	"github.com/anstrom/rangescan/internal/config"
	scanerrors "github.com/anstrom/rangescan/internal/errors"
	"github.com/anstrom/rangescan/internal/logging"
)

// Resolver maps an address to a host name.
type Resolver interface {
	// ResolveName returns the name of address, or "" on any failure.
	ResolveName(ctx context.Context, address string) string
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, address string) string

// ResolveName implements Resolver.
func (f ResolverFunc) ResolveName(ctx context.Context, address string) string {
	return f(ctx, address)
}

// Disabled never resolves anything.
type Disabled struct{}

// ResolveName implements Resolver.
func (Disabled) ResolveName(context.Context, string) string { return "" }

// Chain tries each resolver in order and returns the first non-empty name.
type Chain []Resolver

// ResolveName implements Resolver.
func (c Chain) ResolveName(ctx context.Context, address string) string {
	for _, r := range c {
		if name := r.ResolveName(ctx, address); name != "" {
			return name
		}
	}
	return ""
}

// New builds the resolver described by cfg: a PTR lookup (direct nameserver
// or system resolver) optionally followed by an SNMP sysName query.
func New(cfg config.ResolverConfig) Resolver {
	if !cfg.Enabled {
		return Disabled{}
	}

	var chain Chain
	if cfg.Nameserver != "" {
		chain = append(chain, NewDNSResolver(cfg.Nameserver, cfg.Timeout))
	} else {
		chain = append(chain, NewSystemResolver(cfg.Timeout))
	}

	if cfg.SNMP.Enabled {
		timeout := cfg.SNMP.Timeout
		if timeout <= 0 {
			timeout = cfg.Timeout
		}
		chain = append(chain, NewSNMPResolver(cfg.SNMP.Community, cfg.SNMP.Port, timeout))
	}

	if len(chain) == 1 {
		return chain[0]
	}
	return chain
}

// normalizeName strips the trailing root dot of a fully qualified name.
func normalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".")
}

// collapse turns a lookup result into the name contract, logging failures.
func collapse(resolver, address, name string, err error) string {
	if err != nil {
		logging.DebugProbe("Name lookup failed", address,
			"resolver", resolver,
			"code", string(scanerrors.Classify(err)),
			"error", err)
		return ""
	}
	return name
}
