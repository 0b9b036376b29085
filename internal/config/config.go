// Package config loads and validates rangescan configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

const (
	// DefaultConcurrency is the number of probes allowed in flight per range.
	DefaultConcurrency = 32
	// DefaultProbeTimeout bounds a single reachability probe.
	DefaultProbeTimeout = 1000 * time.Millisecond
	// DefaultResolveTimeout bounds a single reverse lookup.
	DefaultResolveTimeout = 2 * time.Second

	maxConcurrency = 256
	snmpPort       = 161
)

// Config represents the complete application configuration
type Config struct {
	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Reverse name resolution
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Prometheus exposition
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScanningConfig holds scanning-related settings
type ScanningConfig struct {
	// Probe method: icmp, tcp or nmap
	Method string `yaml:"method" json:"method" validate:"oneof=icmp tcp nmap"`

	// Maximum probes in flight per range
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"min=1"`

	// Timeout of a single probe
	ProbeTimeout time.Duration `yaml:"probe_timeout" json:"probe_timeout" validate:"gt=0"`

	// Use raw ICMP sockets instead of unprivileged UDP-ICMP
	Privileged bool `yaml:"privileged" json:"privileged"`

	// Ports tried by the tcp method
	TCPPorts []int `yaml:"tcp_ports" json:"tcp_ports" validate:"dive,min=1,max=65535"`

	// Ranges scanned when the prompt is left blank
	DefaultRanges []string `yaml:"default_ranges" json:"default_ranges" validate:"min=1,dive,required"`

	// Wait for the user before exiting
	WaitForKey bool `yaml:"wait_for_key" json:"wait_for_key"`
}

// ResolverConfig holds reverse lookup settings
type ResolverConfig struct {
	// Resolve names of responsive hosts
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Timeout of a single lookup
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// Nameserver (host:port) queried directly for PTR records; empty uses the system resolver
	Nameserver string `yaml:"nameserver" json:"nameserver" validate:"omitempty,hostname_port"`

	// SNMP sysName fallback
	SNMP SNMPConfig `yaml:"snmp" json:"snmp"`
}

// SNMPConfig holds SNMP sysName lookup settings
type SNMPConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Community string        `yaml:"community" json:"community" validate:"required_if=Enabled true"`
	Port      uint16        `yaml:"port" json:"port" validate:"required_if=Enabled true"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	// Serve /metrics while scanning
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" validate:"omitempty,hostname_port"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output" validate:"required"`
}

// DefaultRanges are the prefixes scanned when no range is entered.
func DefaultRanges() []string {
	return []string{"10.81.1", "10.14.104", "10.81.12", "10.81.13", "10.81.14"}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scanning: ScanningConfig{
			Method:        "icmp",
			Concurrency:   DefaultConcurrency,
			ProbeTimeout:  DefaultProbeTimeout,
			Privileged:    false,
			TCPPorts:      []int{80, 443, 22, 445, 139, 3389},
			DefaultRanges: DefaultRanges(),
			WaitForKey:    true,
		},
		Resolver: ResolverConfig{
			Enabled: true,
			Timeout: DefaultResolveTimeout,
			SNMP: SNMPConfig{
				Enabled:   false,
				Community: "public",
				Port:      snmpPort,
				Timeout:   time.Second,
			},
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9781",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// Start with defaults
	config := Default()

	if path == "" {
		return config, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scanerrors.WrapConfigError(scanerrors.CodeConfiguration, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so one decoder serves every extension.
	if err := yaml.Unmarshal(data, config); err != nil {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			ext = "yaml"
		}
		return nil, scanerrors.WrapConfigError(scanerrors.CodeConfiguration,
			fmt.Sprintf("failed to parse %s config", ext), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			cfgErr := scanerrors.ErrConfigInvalid(field, fe.Value())
			cfgErr.Message = fmt.Sprintf("invalid configuration value (rule: %s)", fe.Tag())
			cfgErr.Cause = err
			return cfgErr
		}
		return scanerrors.WrapConfigError(scanerrors.CodeValidation, "invalid configuration", err)
	}

	if c.Scanning.Concurrency > maxConcurrency {
		return scanerrors.NewConfigFieldError(scanerrors.CodeValidation,
			fmt.Sprintf("concurrency cannot exceed the %d addresses of a range", maxConcurrency),
			"scanning.concurrency", c.Scanning.Concurrency)
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return scanerrors.ErrConfigMissing("metrics.listen_addr")
	}

	if c.Scanning.Method == "tcp" && len(c.Scanning.TCPPorts) == 0 {
		return scanerrors.ErrConfigMissing("scanning.tcp_ports")
	}

	return nil
}

// LogLevel returns the effective log level, lowered to debug when verbose.
func (c *Config) LogLevel(verbose bool) string {
	if verbose {
		return "debug"
	}
	return c.Logging.Level
}
