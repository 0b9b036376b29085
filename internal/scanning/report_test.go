package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPick(int) int { return 0 }

func TestBuilder_SortsByTrailingOctet(t *testing.T) {
	hosts := []HostRecord{
		{Address: "10.0.0.5"},
		{Address: "10.0.0.130", Name: "srv"},
		{Address: "10.0.0.2"},
	}

	report := NewBuilderWithPicker(firstPick).Build(ParseRange("10.0.0"), hosts)

	require.Len(t, report.Hosts, 3)
	assert.Equal(t, "10.0.0.2", report.Hosts[0].Address)
	assert.Equal(t, "10.0.0.5", report.Hosts[1].Address)
	assert.Equal(t, "10.0.0.130", report.Hosts[2].Address)

	// input is left untouched
	assert.Equal(t, "10.0.0.5", hosts[0].Address)
}

func TestBuilder_Scenario(t *testing.T) {
	hosts := []HostRecord{
		{Address: "10.0.0.10"},
		{Address: "10.0.0.5", Name: "host5"},
		{Address: "10.0.0.1"},
	}

	var drawnFrom int
	builder := NewBuilderWithPicker(func(n int) int {
		drawnFrom = n
		return n - 1
	})
	report := builder.Build(ParseRange("10.0.0"), hosts)

	lines := make([]string, 0, len(report.Hosts))
	for _, h := range report.Hosts {
		lines = append(lines, h.String())
	}
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.5 - host5", "10.0.0.10"}, lines)
	assert.InDelta(t, 1.171875, report.Occupancy, 1e-9)
	assert.Equal(t, "1.17%", formatPercent(report.Occupancy))
	assert.Equal(t, 253, drawnFrom)
	assert.Equal(t, "10.0.0.255", report.Available)
}

func TestBuilder_AvailableComesFromComplement(t *testing.T) {
	r := ParseRange("192.168.7")
	var hosts []HostRecord
	for i := 0; i < RangeSize; i += 3 {
		hosts = append(hosts, HostRecord{Address: r.Address(i)})
	}
	taken := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		taken[h.Address] = true
	}

	builder := NewBuilder()
	for range 200 {
		report := builder.Build(r, hosts)
		require.NotEmpty(t, report.Available)
		assert.False(t, taken[report.Available], "picked responsive address %s", report.Available)
		assert.True(t, r.Contains(report.Available))
	}
}

func TestBuilder_FullRangeHasNoAvailable(t *testing.T) {
	r := ParseRange("10.1.1")
	hosts := make([]HostRecord, 0, RangeSize)
	for _, addr := range r.Addresses() {
		hosts = append(hosts, HostRecord{Address: addr})
	}

	picked := false
	report := NewBuilderWithPicker(func(int) int { picked = true; return 0 }).Build(r, hosts)

	assert.Len(t, report.Hosts, RangeSize)
	assert.Equal(t, 100.0, report.Occupancy)
	assert.Empty(t, report.Available)
	assert.False(t, picked)
}

func TestBuilder_NoHosts(t *testing.T) {
	report := NewBuilder().Build(ParseRange("10.2.2"), nil)

	assert.False(t, report.Responsive())
	assert.Empty(t, report.Hosts)
	assert.Zero(t, report.Occupancy)
	assert.Empty(t, report.Available)
}

func TestBuilder_FiltersToRange(t *testing.T) {
	hosts := []HostRecord{
		{Address: "10.81.1.4"},
		{Address: "10.81.100.5"},
		{Address: "10.81.12.9"},
	}

	report := NewBuilderWithPicker(firstPick).Build(ParseRange("10.81.1"), hosts)

	require.Len(t, report.Hosts, 1)
	assert.Equal(t, "10.81.1.4", report.Hosts[0].Address)
	assert.Equal(t, "10.81.1.0", report.Available)
}

func TestBuilder_Idempotent(t *testing.T) {
	hosts := []HostRecord{
		{Address: "10.0.0.40"},
		{Address: "10.0.0.3", Name: "a"},
		{Address: "10.0.0.17"},
	}
	builder := NewBuilder()
	r := ParseRange("10.0.0")

	first := builder.Build(r, hosts)
	second := builder.Build(r, hosts)

	assert.Equal(t, first.Hosts, second.Hosts)
	assert.Equal(t, first.Occupancy, second.Occupancy)
}

func TestBuilder_MalformedOctetSortsFirst(t *testing.T) {
	hosts := []HostRecord{
		{Address: "10.0.0.9"},
		{Address: "10.0.0.x"},
	}

	report := NewBuilderWithPicker(firstPick).Build(ParseRange("10.0.0"), hosts)

	require.Len(t, report.Hosts, 2)
	assert.Equal(t, "10.0.0.x", report.Hosts[0].Address)
}
