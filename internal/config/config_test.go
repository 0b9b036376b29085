package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "icmp", cfg.Scanning.Method)
	assert.Equal(t, 32, cfg.Scanning.Concurrency)
	assert.Equal(t, time.Second, cfg.Scanning.ProbeTimeout)
	assert.Equal(t, []string{"10.81.1", "10.14.104", "10.81.12", "10.81.13", "10.81.14"}, cfg.Scanning.DefaultRanges)
	assert.True(t, cfg.Scanning.WaitForKey)
	assert.True(t, cfg.Resolver.Enabled)
	assert.False(t, cfg.Resolver.SNMP.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode scanerrors.ErrorCode
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml config",
			file: "config.yaml",
			content: `
scanning:
  method: tcp
  concurrency: 16
  probe_timeout: 500ms
  tcp_ports: [22, 80]
  default_ranges: ["192.168.0", "192.168.1"]
resolver:
  nameserver: 10.0.0.53:53
  snmp:
    enabled: true
    community: private
metrics:
  enabled: true
  listen_addr: 127.0.0.1:9100
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "tcp", cfg.Scanning.Method)
				assert.Equal(t, 16, cfg.Scanning.Concurrency)
				assert.Equal(t, 500*time.Millisecond, cfg.Scanning.ProbeTimeout)
				assert.Equal(t, []int{22, 80}, cfg.Scanning.TCPPorts)
				assert.Equal(t, []string{"192.168.0", "192.168.1"}, cfg.Scanning.DefaultRanges)
				assert.Equal(t, "10.0.0.53:53", cfg.Resolver.Nameserver)
				assert.Equal(t, "private", cfg.Resolver.SNMP.Community)
				assert.Equal(t, uint16(161), cfg.Resolver.SNMP.Port)
				assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.ListenAddr)
				// untouched sections keep their defaults
				assert.Equal(t, "warn", cfg.Logging.Level)
			},
		},
		{
			name:    "valid json config",
			file:    "config.json",
			content: `{"scanning": {"concurrency": 8}, "logging": {"level": "debug", "format": "json"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Scanning.Concurrency)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name:     "invalid yaml",
			file:     "broken.yaml",
			content:  "scanning: [unterminated",
			wantCode: scanerrors.CodeConfiguration,
		},
		{
			name:     "invalid method",
			file:     "method.yaml",
			content:  "scanning:\n  method: arp\n",
			wantCode: scanerrors.CodeValidation,
		},
		{
			name:     "zero concurrency",
			file:     "zero.yaml",
			content:  "scanning:\n  concurrency: 0\n",
			wantCode: scanerrors.CodeValidation,
		},
		{
			name:     "concurrency above range size",
			file:     "big.yaml",
			content:  "scanning:\n  concurrency: 512\n",
			wantCode: scanerrors.CodeValidation,
		},
		{
			name:     "bad nameserver",
			file:     "ns.yaml",
			content:  "resolver:\n  nameserver: not a server\n",
			wantCode: scanerrors.CodeValidation,
		},
		{
			name:     "empty default ranges",
			file:     "ranges.yaml",
			content:  "scanning:\n  default_ranges: []\n",
			wantCode: scanerrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(path)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, scanerrors.IsCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateFieldNames(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *scanerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "logging.level", cfgErr.Field)
	assert.Equal(t, "verbose", cfgErr.Value)
}

func TestValidateCrossField(t *testing.T) {
	t.Run("metrics enabled without address", func(t *testing.T) {
		cfg := Default()
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = ""
		assert.True(t, scanerrors.IsCode(cfg.Validate(), scanerrors.CodeConfiguration))
	})

	t.Run("tcp without ports", func(t *testing.T) {
		cfg := Default()
		cfg.Scanning.Method = "tcp"
		cfg.Scanning.TCPPorts = nil
		assert.True(t, scanerrors.IsCode(cfg.Validate(), scanerrors.CodeConfiguration))
	})

	t.Run("snmp enabled without community", func(t *testing.T) {
		cfg := Default()
		cfg.Resolver.SNMP.Enabled = true
		cfg.Resolver.SNMP.Community = ""
		assert.True(t, scanerrors.IsCode(cfg.Validate(), scanerrors.CodeValidation))
	})
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.LogLevel(false))
	assert.Equal(t, "debug", cfg.LogLevel(true))
}
