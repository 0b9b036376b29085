package probe

import (
	"context"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
	"github.com/anstrom/rangescan/internal/logging"
)

const pingGroupRangePath = "/proc/sys/net/ipv4/ping_group_range"

// ICMPProber sends one ICMP echo request per address.
type ICMPProber struct {
	timeout    time.Duration
	privileged bool
}

// NewICMPProber creates an ICMP prober. Unprivileged mode uses UDP-ICMP
// sockets, which on Linux require net.ipv4.ping_group_range to include the user.
func NewICMPProber(timeout time.Duration, privileged bool) *ICMPProber {
	return &ICMPProber{timeout: timeout, privileged: privileged}
}

// Probe implements Prober.
func (p *ICMPProber) Probe(ctx context.Context, address string) bool {
	return collapse(MethodICMP, address, p.echo(ctx, address))
}

func (p *ICMPProber) echo(ctx context.Context, address string) error {
	ip, err := parseTarget(MethodICMP, address)
	if err != nil {
		return err
	}

	pinger, err := probing.NewPinger(ip.String())
	if err != nil {
		return scanerrors.ErrInvalidTarget(string(MethodICMP), address, err)
	}
	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return scanerrors.WrapProbeError("", "Echo request failed", string(MethodICMP), address, err)
	}

	if pinger.Statistics().PacketsRecv == 0 {
		return scanerrors.ErrNoReply(string(MethodICMP), address)
	}
	return nil
}

// icmpMode picks raw or unprivileged sockets. Root always gets raw sockets.
// Otherwise a warning is logged once when the kernel refuses unprivileged
// echo for every group of the process, since each probe would then fail.
func icmpMode(privileged bool) bool {
	if privileged {
		return true
	}
	if os.Geteuid() == 0 {
		logging.Debug("Running as root, using privileged ICMP")
		return true
	}

	groups, _ := os.Getgroups()
	groups = append(groups, os.Getgid())
	if !pingGroupAllowed(pingGroupRangePath, groups) {
		logging.Warn("Unprivileged ICMP is not permitted for this user, every address will appear unreachable",
			"setting", "net.ipv4.ping_group_range",
			"hint", "run as root with --privileged, widen ping_group_range or use --method tcp")
	}
	return false
}

// pingGroupAllowed reports whether the ping_group_range file at path admits
// any of groups. An unreadable or malformed file is treated as allowing.
func pingGroupAllowed(path string, groups []int) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return true
	}
	lo, errLo := strconv.Atoi(fields[0])
	hi, errHi := strconv.Atoi(fields[1])
	if errLo != nil || errHi != nil {
		return true
	}

	return slices.ContainsFunc(groups, func(g int) bool {
		return g >= lo && g <= hi
	})
}
