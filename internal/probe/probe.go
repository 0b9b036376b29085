// Package probe implements single-shot host reachability checks.
//
// Every prober honours the same contract: one attempt per address, bounded by
// a fixed timeout, and a plain boolean result. Failures of any kind (timeouts,
// unreachable routes, malformed addresses, missing privileges) collapse to
// false; the cause is only visible in debug logs.
package probe

//go:generate mockgen -source=probe.go -destination=mocks/mock_probe.go -package=mocks

import (
	"context"
	"fmt"
	"net"
	"time"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
	"github.com/anstrom/rangescan/internal/logging"
)

// Method names a probing technique.
type Method string

const (
	MethodICMP Method = "icmp"
	MethodTCP  Method = "tcp"
	MethodNmap Method = "nmap"
)

// DefaultTimeout bounds a single probe when none is configured.
const DefaultTimeout = 1000 * time.Millisecond

// Prober checks whether a single address answers.
type Prober interface {
	// Probe reports whether address replied with an explicit success.
	Probe(ctx context.Context, address string) bool
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, address string) bool

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, address string) bool {
	return f(ctx, address)
}

// Options configures the probers built by New.
type Options struct {
	Timeout    time.Duration
	Privileged bool
	TCPPorts   []int
}

// New returns the prober for method.
func New(method Method, opts Options) (Prober, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	switch method {
	case MethodICMP:
		return NewICMPProber(opts.Timeout, icmpMode(opts.Privileged)), nil
	case MethodTCP:
		if len(opts.TCPPorts) == 0 {
			return nil, scanerrors.ErrConfigMissing("scanning.tcp_ports")
		}
		return NewTCPProber(opts.Timeout, opts.TCPPorts), nil
	case MethodNmap:
		return NewNmapProber(opts.Timeout)
	default:
		return nil, scanerrors.ErrConfigInvalid("scanning.method", string(method))
	}
}

// parseTarget rejects anything that is not a literal IPv4 address, so that
// malformed range input never triggers a forward DNS lookup.
func parseTarget(method Method, address string) (net.IP, error) {
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return nil, scanerrors.ErrInvalidTarget(string(method), address,
			fmt.Errorf("not an IPv4 address: %q", address))
	}
	return ip.To4(), nil
}

// collapse turns a probe error into the boolean result, logging the cause.
func collapse(method Method, address string, err error) bool {
	if err == nil {
		return true
	}
	logging.DebugProbe("Probe failed", address,
		"method", string(method),
		"code", string(scanerrors.Classify(err)),
		"error", err)
	return false
}
