package scanning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	assert.Equal(t, "10.81.14", ParseRange(" 10.81.14").Prefix())
	assert.Equal(t, "10.81.1", ParseRange("10.81.1\n").String())
	assert.Equal(t, "not a range", ParseRange("not a range").Prefix())
}

func TestParseRanges(t *testing.T) {
	ranges := ParseRanges([]string{"10.81.1", "  ", " 10.81.14"})

	require.Len(t, ranges, 2)
	assert.Equal(t, "10.81.1", ranges[0].Prefix())
	assert.Equal(t, "10.81.14", ranges[1].Prefix())
}

func TestRange_Addresses(t *testing.T) {
	r := ParseRange("10.81.1")
	addrs := r.Addresses()

	require.Len(t, addrs, RangeSize)
	assert.Equal(t, "10.81.1.0", addrs[0])
	assert.Equal(t, "10.81.1.255", addrs[255])
	assert.Equal(t, "10.81.1.0/24", r.CIDR())
}

func TestRange_Contains(t *testing.T) {
	r := ParseRange("10.81.1")

	tests := []struct {
		address string
		want    bool
	}{
		{"10.81.1.0", true},
		{"10.81.1.255", true},
		{"10.81.100.5", false},
		{"10.81.12.3", false},
		{"10.81.1.", false},
		{"10.81.1", false},
		{"10.81.1.5.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Contains(tt.address), tt.address)
	}
}

func TestOctet(t *testing.T) {
	assert.Equal(t, 130, Octet("10.0.0.130"))
	assert.Equal(t, 0, Octet("10.0.0.abc"))
	assert.Equal(t, 0, Octet("10.0.0"))
	assert.Equal(t, 0, Octet(""))
	assert.Equal(t, 0, Octet("1.2.3.4.5"))
}

func TestHostRecord_String(t *testing.T) {
	assert.Equal(t, "10.0.0.1", HostRecord{Address: "10.0.0.1"}.String())
	assert.Equal(t, "10.0.0.5 - host5", HostRecord{Address: "10.0.0.5", Name: "host5"}.String())
}

func TestCollection_ConcurrentAdds(t *testing.T) {
	c := NewCollection()
	var wg sync.WaitGroup
	for i := range RangeSize {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(HostRecord{Address: ParseRange("10.0.0").Address(i)})
		}()
	}
	wg.Wait()

	assert.Equal(t, RangeSize, c.Len())
	snap := c.Snapshot()
	snap[0].Name = "changed"
	assert.Empty(t, c.Snapshot()[0].Name)
}

func TestLimiter(t *testing.T) {
	t.Run("blocks when saturated", func(t *testing.T) {
		l := NewLimiter(2)
		ctx := context.Background()
		require.NoError(t, l.Acquire(ctx))
		require.NoError(t, l.Acquire(ctx))
		assert.Equal(t, 2, l.InFlight())

		timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		assert.Error(t, l.Acquire(timeout))

		l.Release()
		require.NoError(t, l.Acquire(ctx))
		assert.Equal(t, 2, l.Peak())
	})

	t.Run("release unblocks waiter", func(t *testing.T) {
		l := NewLimiter(1)
		require.NoError(t, l.Acquire(context.Background()))

		acquired := make(chan struct{})
		go func() {
			if err := l.Acquire(context.Background()); err == nil {
				close(acquired)
			}
		}()

		select {
		case <-acquired:
			t.Fatal("acquired while saturated")
		case <-time.After(20 * time.Millisecond):
		}

		l.Release()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("waiter was not released")
		}
	})

	t.Run("invalid capacity", func(t *testing.T) {
		assert.Equal(t, 1, NewLimiter(0).Capacity())
	})
}
