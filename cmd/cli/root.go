// Package cli provides the command-line interface of the rangescan host
// discovery tool. It wires configuration, logging, probing, name resolution
// and metrics into one interactive Cobra command.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/rangescan/internal/config"
	scanerrors "github.com/anstrom/rangescan/internal/errors"
	"github.com/anstrom/rangescan/internal/logging"
)

const envPrefix = "RANGESCAN"

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// options holds the values of the global flags.
type options struct {
	cfgFile   string
	verbose   bool
	noResolve bool
	noWait    bool
}

// NewRootCommand builds the rangescan command.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "rangescan [prefix...]",
		Short: "Find responsive hosts in /24 ranges",
		Long: `rangescan probes every address of one or more /24 ranges, lists the
hosts that answer together with their names, reports how much of each range
is in use and suggests a free address.

Ranges are given as three-octet prefixes such as 10.81.1. Without arguments
the prefix is read from an interactive prompt, where an empty line selects
the configured default ranges.`,
		Example: `  rangescan
  rangescan 192.168.1
  rangescan --method tcp --concurrency 64 10.0.0 10.0.1
  rangescan --nameserver 10.0.0.53:53 --no-wait 10.81.12`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, opts)
			if err != nil {
				return err
			}
			initLogging(cfg, opts.verbose)
			return runSweep(cmd, cfg, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./rangescan.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	addScanFlags(cmd.Flags(), opts)
	bindFlags(v, cmd.Flags())

	return cmd
}

// addScanFlags defines the flags that override configuration values.
func addScanFlags(fs *pflag.FlagSet, opts *options) {
	fs.String("method", "icmp", "Probe method: icmp, tcp or nmap")
	fs.Int("concurrency", config.DefaultConcurrency, "Maximum probes in flight per range")
	fs.Duration("timeout", config.DefaultProbeTimeout, "Timeout of a single probe")
	fs.Bool("privileged", false, "Use raw ICMP sockets (requires root or CAP_NET_RAW)")
	fs.IntSlice("ports", nil, "Ports tried by the tcp method")
	fs.String("nameserver", "", "Query this nameserver (host:port) for PTR records")
	fs.BoolVar(&opts.noResolve, "no-resolve", false, "Do not resolve host names")
	fs.Bool("snmp", false, "Fall back to SNMP sysName when no PTR record exists")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while scanning")
	fs.BoolVar(&opts.noWait, "no-wait", false, "Exit without waiting for Enter")
}

// flagKeys maps flags to configuration keys.
var flagKeys = map[string]string{
	"method":       "scanning.method",
	"concurrency":  "scanning.concurrency",
	"timeout":      "scanning.probe_timeout",
	"privileged":   "scanning.privileged",
	"ports":        "scanning.tcp_ports",
	"nameserver":   "resolver.nameserver",
	"snmp":         "resolver.snmp.enabled",
	"metrics-addr": "metrics.listen_addr",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", name, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range overrideKeys {
		_ = v.BindEnv(key)
	}
}

// overrideKeys are the configuration keys that flags and RANGESCAN_*
// variables can set.
var overrideKeys = []string{
	"scanning.method",
	"scanning.concurrency",
	"scanning.probe_timeout",
	"scanning.privileged",
	"scanning.tcp_ports",
	"resolver.enabled",
	"resolver.nameserver",
	"resolver.snmp.enabled",
	"resolver.snmp.community",
	"metrics.listen_addr",
	"logging.level",
	"logging.format",
	"logging.output",
}

// loadConfig reads the configuration file and applies flag and environment
// overrides on top of it.
func loadConfig(v *viper.Viper, opts *options) (*config.Config, error) {
	path := opts.cfgFile
	if path == "" {
		path = "rangescan.yaml"
	} else if _, err := os.Stat(path); err != nil {
		return nil, scanerrors.WrapConfigError(scanerrors.CodeConfiguration,
			fmt.Sprintf("config file %s is not readable", path), err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	applyOverrides(v, cfg)
	if opts.noResolve {
		cfg.Resolver.Enabled = false
	}
	if cfg.Metrics.ListenAddr != "" && v.IsSet("metrics.listen_addr") {
		cfg.Metrics.Enabled = true
	}
	if opts.noWait {
		cfg.Scanning.WaitForKey = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("scanning.method") {
		cfg.Scanning.Method = v.GetString("scanning.method")
	}
	if v.IsSet("scanning.concurrency") {
		cfg.Scanning.Concurrency = v.GetInt("scanning.concurrency")
	}
	if v.IsSet("scanning.probe_timeout") {
		cfg.Scanning.ProbeTimeout = v.GetDuration("scanning.probe_timeout")
	}
	if v.IsSet("scanning.privileged") {
		cfg.Scanning.Privileged = v.GetBool("scanning.privileged")
	}
	if v.IsSet("scanning.tcp_ports") {
		if ports := v.GetIntSlice("scanning.tcp_ports"); len(ports) > 0 {
			cfg.Scanning.TCPPorts = ports
		}
	}
	if v.IsSet("resolver.enabled") {
		cfg.Resolver.Enabled = v.GetBool("resolver.enabled")
	}
	if v.IsSet("resolver.nameserver") {
		cfg.Resolver.Nameserver = v.GetString("resolver.nameserver")
	}
	if v.IsSet("resolver.snmp.enabled") {
		cfg.Resolver.SNMP.Enabled = v.GetBool("resolver.snmp.enabled")
	}
	if v.IsSet("resolver.snmp.community") {
		cfg.Resolver.SNMP.Community = v.GetString("resolver.snmp.community")
	}
	if v.IsSet("metrics.listen_addr") {
		cfg.Metrics.ListenAddr = v.GetString("metrics.listen_addr")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.Logging.Format = v.GetString("logging.format")
	}
	if v.IsSet("logging.output") {
		cfg.Logging.Output = v.GetString("logging.output")
	}
}

// initLogging installs the default logger described by cfg.
func initLogging(cfg *config.Config, verbose bool) {
	logConfig := logging.Config{
		Level:     logging.LogLevel(cfg.LogLevel(verbose)),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: verbose,
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	if verbose {
		logging.Info("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format)
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err. Configuration problems also point at --help.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if scanerrors.IsFatal(err) {
		fmt.Fprintln(w, "Run 'rangescan --help' for usage.")
	}
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}
