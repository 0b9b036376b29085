package probe

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/Ullaakut/nmap/v3"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

// nmapStartupAllowance covers process start and teardown on top of the probe timeout.
const nmapStartupAllowance = 2 * time.Second

// NmapProber runs an nmap host-discovery scan (-sn) against one address.
// nmap combines ICMP, TCP SYN/ACK and, on local segments, ARP probes.
type NmapProber struct {
	timeout time.Duration
}

// NewNmapProber creates an nmap prober, failing when nmap is not installed.
func NewNmapProber(timeout time.Duration) (*NmapProber, error) {
	if _, err := exec.LookPath("nmap"); err != nil {
		return nil, scanerrors.WrapConfigError(scanerrors.CodeConfiguration,
			"nmap probe method requires the nmap binary in PATH", err)
	}
	return &NmapProber{timeout: timeout}, nil
}

// Probe implements Prober.
func (p *NmapProber) Probe(ctx context.Context, address string) bool {
	return collapse(MethodNmap, address, p.pingScan(ctx, address))
}

func buildNmapOptions(address string, timeout time.Duration) []nmap.Option {
	return []nmap.Option{
		nmap.WithTargets(address),
		nmap.WithPingScan(),
		nmap.WithTimingTemplate(nmap.TimingAggressive),
		nmap.WithHostTimeout(timeout),
	}
}

func (p *NmapProber) pingScan(ctx context.Context, address string) error {
	ip, err := parseTarget(MethodNmap, address)
	if err != nil {
		return err
	}

	scanCtx, cancel := context.WithTimeout(ctx, p.timeout+nmapStartupAllowance)
	defer cancel()

	scanner, err := nmap.NewScanner(scanCtx, buildNmapOptions(ip.String(), p.timeout)...)
	if err != nil {
		return scanerrors.WrapProbeError(scanerrors.CodeProbeFailed, "Failed to create nmap scanner",
			string(MethodNmap), address, err)
	}

	result, _, err := scanner.Run()
	if err != nil {
		return scanerrors.WrapProbeError("", "nmap ping scan failed", string(MethodNmap), address, err)
	}

	for i := range result.Hosts {
		host := &result.Hosts[i]
		if host.Status.State != "up" {
			continue
		}
		for _, addr := range host.Addresses {
			if addr.Addr == ip.String() {
				return nil
			}
		}
	}

	return scanerrors.NewProbeError(scanerrors.CodeHostUnreachable,
		fmt.Sprintf("nmap reported %d host(s) up", countUp(result)), string(MethodNmap), address)
}

func countUp(result *nmap.Run) int {
	up := 0
	for i := range result.Hosts {
		if result.Hosts[i].Status.State == "up" {
			up++
		}
	}
	return up
}
