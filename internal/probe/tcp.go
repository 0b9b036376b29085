package probe

import (
	"context"
	stderrors "errors"
	"net"
	"strconv"
	"syscall"
	"time"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

// TCPProber treats a host as reachable when any of its ports answers a TCP
// handshake, either by accepting it or by refusing it with a reset. It needs
// no raw socket privileges.
type TCPProber struct {
	timeout time.Duration
	ports   []int
	dialer  net.Dialer
}

// NewTCPProber creates a TCP connect prober for ports.
func NewTCPProber(timeout time.Duration, ports []int) *TCPProber {
	return &TCPProber{
		timeout: timeout,
		ports:   append([]int(nil), ports...),
	}
}

// Probe implements Prober.
func (p *TCPProber) Probe(ctx context.Context, address string) bool {
	return collapse(MethodTCP, address, p.connect(ctx, address))
}

// connect dials all ports at once under a single deadline; the first answer wins.
func (p *TCPProber) connect(ctx context.Context, address string) error {
	ip, err := parseTarget(MethodTCP, address)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make(chan error, len(p.ports))
	for _, port := range p.ports {
		go func(port int) {
			results <- p.dial(ctx, net.JoinHostPort(ip.String(), strconv.Itoa(port)))
		}(port)
	}

	var lastErr error
	for range p.ports {
		err := <-results
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return scanerrors.WrapProbeError("", "No port answered", string(MethodTCP), address, lastErr)
}

func (p *TCPProber) dial(ctx context.Context, hostport string) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", hostport)
	if err == nil {
		_ = conn.Close()
		return nil
	}
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		// A reset still proves the host is up.
		return nil
	}
	return err
}
