package scanning

import (
	"strconv"
	"strings"
)

// RangeSize is the number of addresses in a /24 range.
const RangeSize = 256

// Range is a three-octet prefix such as "10.81.1" denoting a /24 space.
type Range struct {
	prefix string
}

// ParseRange reads a range prefix. Only surrounding whitespace is removed;
// a malformed prefix is accepted and simply produces no reachable hosts.
func ParseRange(input string) Range {
	return Range{prefix: strings.TrimSpace(input)}
}

// ParseRanges reads every entry of inputs, skipping blank ones.
func ParseRanges(inputs []string) []Range {
	ranges := make([]Range, 0, len(inputs))
	for _, in := range inputs {
		r := ParseRange(in)
		if r.prefix == "" {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// Prefix returns the range prefix.
func (r Range) Prefix() string {
	return r.prefix
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return r.prefix
}

// CIDR renders the range as "prefix.0/24".
func (r Range) CIDR() string {
	return r.prefix + ".0/24"
}

// Address returns "prefix.i".
func (r Range) Address(i int) string {
	return r.prefix + "." + strconv.Itoa(i)
}

// Addresses returns the 256 addresses of the range in ascending order.
func (r Range) Addresses() []string {
	addrs := make([]string, RangeSize)
	for i := range addrs {
		addrs[i] = r.Address(i)
	}
	return addrs
}

// Contains reports whether address is "prefix.<octet>" for this range.
// Matching is on the whole prefix, so 10.81.100.5 is not in 10.81.1.
func (r Range) Contains(address string) bool {
	rest, ok := strings.CutPrefix(address, r.prefix+".")
	if !ok || rest == "" {
		return false
	}
	return !strings.Contains(rest, ".")
}

// Octet returns the trailing octet of a dotted-quad address, or 0 when the
// address does not have four parts or the last one is not an integer.
func Octet(address string) int {
	parts := strings.Split(address, ".")
	if len(parts) != 4 {
		return 0
	}
	n, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0
	}
	return n
}
