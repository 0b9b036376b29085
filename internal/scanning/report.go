package scanning

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// Report summarizes one scanned range.
type Report struct {
	Range Range
	// Hosts is sorted by trailing octet.
	Hosts []HostRecord
	// Occupancy is the percentage of the range's addresses that responded.
	Occupancy float64
	// Available is a randomly chosen non-responsive address, or "" when
	// every address responded or the report has no hosts.
	Available string
}

// Responsive reports whether any host in the range responded.
func (r Report) Responsive() bool {
	return len(r.Hosts) > 0
}

// Builder turns the hosts collected by a pass into a Report.
type Builder struct {
	pick func(n int) int
}

// NewBuilder creates a builder that picks the available address uniformly
// at random.
func NewBuilder() *Builder {
	return &Builder{pick: rand.IntN}
}

// NewBuilderWithPicker creates a builder whose available-address choice is
// pick(n), which must return a value in [0, n).
func NewBuilderWithPicker(pick func(n int) int) *Builder {
	return &Builder{pick: pick}
}

// Build filters hosts to r, sorts them and computes occupancy and an
// available address. It does not modify hosts.
func (b *Builder) Build(r Range, hosts []HostRecord) Report {
	report := Report{Range: r}

	inRange := make([]HostRecord, 0, len(hosts))
	for _, h := range hosts {
		if r.Contains(h.Address) {
			inRange = append(inRange, h)
		}
	}
	if len(inRange) == 0 {
		return report
	}

	slices.SortStableFunc(inRange, func(a, b HostRecord) int {
		return cmp.Compare(Octet(a.Address), Octet(b.Address))
	})
	report.Hosts = inRange
	report.Occupancy = float64(len(inRange)) / RangeSize * 100

	free := unreachable(r, inRange)
	if len(free) > 0 {
		report.Available = free[b.pick(len(free))]
	}
	return report
}

// unreachable returns the addresses of r that are not in hosts.
func unreachable(r Range, hosts []HostRecord) []string {
	seen := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		seen[h.Address] = struct{}{}
	}

	free := make([]string, 0, RangeSize-len(seen))
	for _, addr := range r.Addresses() {
		if _, ok := seen[addr]; !ok {
			free = append(free, addr)
		}
	}
	return free
}
