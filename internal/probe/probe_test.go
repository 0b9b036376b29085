package probe

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

func TestNew(t *testing.T) {
	t.Run("icmp", func(t *testing.T) {
		p, err := New(MethodICMP, Options{})
		require.NoError(t, err)
		icmp, ok := p.(*ICMPProber)
		require.True(t, ok)
		assert.Equal(t, DefaultTimeout, icmp.timeout)
		assert.Equal(t, os.Geteuid() == 0, icmp.privileged)
	})

	t.Run("tcp", func(t *testing.T) {
		p, err := New(MethodTCP, Options{Timeout: 250 * time.Millisecond, TCPPorts: []int{22, 80}})
		require.NoError(t, err)
		tcp, ok := p.(*TCPProber)
		require.True(t, ok)
		assert.Equal(t, 250*time.Millisecond, tcp.timeout)
		assert.Equal(t, []int{22, 80}, tcp.ports)
	})

	t.Run("tcp without ports", func(t *testing.T) {
		_, err := New(MethodTCP, Options{})
		assert.True(t, scanerrors.IsCode(err, scanerrors.CodeConfiguration))
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := New(Method("arp"), Options{})
		assert.True(t, scanerrors.IsCode(err, scanerrors.CodeValidation))
	})

	t.Run("nmap", func(t *testing.T) {
		p, err := New(MethodNmap, Options{})
		if err != nil {
			// nmap is not installed on every machine running the tests.
			assert.True(t, scanerrors.IsCode(err, scanerrors.CodeConfiguration))
			return
		}
		assert.IsType(t, &NmapProber{}, p)
	})
}

func TestParseTarget(t *testing.T) {
	ip, err := parseTarget(MethodICMP, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip.String())

	for _, bad := range []string{"", "10.0.0", "10.0.0.256", "host.example", " 10.81.14.1", "::1"} {
		_, err := parseTarget(MethodICMP, bad)
		assert.True(t, scanerrors.IsCode(err, scanerrors.CodeTargetInvalid), "address %q", bad)
	}
}

func TestMalformedAddressesAreUnreachable(t *testing.T) {
	ctx := context.Background()
	probers := []Prober{
		NewICMPProber(50*time.Millisecond, false),
		NewTCPProber(50*time.Millisecond, []int{80}),
		&NmapProber{timeout: 50 * time.Millisecond},
	}

	for _, p := range probers {
		assert.False(t, p.Probe(ctx, "not.an.address.0"))
		assert.False(t, p.Probe(ctx, "10.81.1.999"))
	}
}

func TestTCPProber(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	openPort := listener.Addr().(*net.TCPAddr).Port

	t.Run("accepted connection", func(t *testing.T) {
		p := NewTCPProber(time.Second, []int{openPort})
		assert.True(t, p.Probe(context.Background(), "127.0.0.1"))
	})

	t.Run("refused connection still proves the host is up", func(t *testing.T) {
		closed, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		closedPort := closed.Addr().(*net.TCPAddr).Port
		require.NoError(t, closed.Close())

		p := NewTCPProber(time.Second, []int{closedPort})
		assert.True(t, p.Probe(context.Background(), "127.0.0.1"))
	})

	t.Run("any port answering is enough", func(t *testing.T) {
		p := NewTCPProber(time.Second, []int{openPort, 9})
		assert.True(t, p.Probe(context.Background(), "127.0.0.1"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := NewTCPProber(time.Second, []int{openPort})
		assert.False(t, p.Probe(ctx, "127.0.0.1"))
	})

	t.Run("copies ports", func(t *testing.T) {
		ports := []int{openPort}
		p := NewTCPProber(time.Second, ports)
		ports[0] = 1
		assert.Equal(t, []int{openPort}, p.ports)
	})
}

func TestBuildNmapOptions(t *testing.T) {
	opts := buildNmapOptions("10.0.0.1", time.Second)
	assert.Len(t, opts, 4)
}

func TestProberFunc(t *testing.T) {
	var seen string
	p := ProberFunc(func(_ context.Context, address string) bool {
		seen = address
		return address == "10.0.0.1"
	})

	assert.True(t, p.Probe(context.Background(), "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", seen)
	assert.False(t, p.Probe(context.Background(), "10.0.0.2"))
}

func TestPingGroupAllowed(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	tests := []struct {
		name   string
		path   string
		groups []int
		want   bool
	}{
		{"disabled range", write("disabled", "1\t0\n"), []int{0, 1000}, false},
		{"full range", write("full", "0\t2147483647\n"), []int{1000}, true},
		{"group inside range", write("inside", "100 200\n"), []int{5, 150}, true},
		{"group outside range", write("outside", "100 200\n"), []int{5, 250}, false},
		{"malformed file", write("malformed", "garbage\n"), []int{5}, true},
		{"missing file", filepath.Join(dir, "missing"), []int{5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pingGroupAllowed(tt.path, tt.groups))
		})
	}
}

func TestICMPModeKeepsExplicitPrivileged(t *testing.T) {
	assert.True(t, icmpMode(true))
	assert.Equal(t, os.Geteuid() == 0, icmpMode(false))
}
