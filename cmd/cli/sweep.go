package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anstrom/rangescan/internal/config"
	"github.com/anstrom/rangescan/internal/logging"
	"github.com/anstrom/rangescan/internal/metrics"
	"github.com/anstrom/rangescan/internal/probe"
	"github.com/anstrom/rangescan/internal/resolve"
	"github.com/anstrom/rangescan/internal/scanning"
)

const promptText = "Press Enter to scan the default ranges or type the range (###.###.###) to scan:"

// notifyContext traps interrupts while ranges are being scanned.
var notifyContext = signal.NotifyContext

// runSweep reads the ranges, scans them and waits for the user before
// returning.
func runSweep(cmd *cobra.Command, cfg *config.Config, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var ranges []scanning.Range
	if len(args) > 0 {
		ranges = scanning.ParseRanges(args)
	} else {
		var err error
		ranges, err = promptRanges(in, out, cfg.Scanning.DefaultRanges)
		if err != nil {
			return err
		}
	}

	prober, err := probe.New(probe.Method(cfg.Scanning.Method), probe.Options{
		Timeout:    cfg.Scanning.ProbeTimeout,
		Privileged: cfg.Scanning.Privileged,
		TCPPorts:   cfg.Scanning.TCPPorts,
	})
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		pm := metrics.NewPrometheusMetrics()
		server := metrics.NewServer(cfg.Metrics.ListenAddr, pm, accessLog(cfg))
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			if err := server.Stop(); err != nil {
				logging.Warn("Metrics server did not stop cleanly", "error", err)
			}
		}()
		recorder = pm
	}

	printer := scanning.NewPrinter(out)
	coordinator := scanning.NewCoordinator(prober, resolve.New(cfg.Resolver), printer,
		scanning.WithConcurrency(cfg.Scanning.Concurrency),
		scanning.WithMethod(cfg.Scanning.Method),
		scanning.WithMetrics(recorder),
		scanning.WithLogger(logging.Default()),
	)

	// Interrupts are only trapped during the scan; the prompt and the final
	// wait keep the default behaviour so Ctrl-C still exits there.
	ctx, stop := notifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	_, err = coordinator.Run(ctx, ranges)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Fprintln(out, "\nScan interrupted.")
		return nil
	}

	printer.Done(cfg.Scanning.WaitForKey)
	if cfg.Scanning.WaitForKey {
		waitForEnter(in)
	}
	return nil
}

// promptRanges asks for a range prefix. A blank answer, or no input at all,
// selects defaults.
func promptRanges(in *bufio.Reader, out io.Writer, defaults []string) ([]scanning.Range, error) {
	fmt.Fprintln(out, promptText)

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read range: %w", err)
	}

	if strings.TrimSpace(line) == "" {
		return scanning.ParseRanges(defaults), nil
	}
	return []scanning.Range{scanning.ParseRange(line)}, nil
}

// waitForEnter blocks until a line (or EOF) is read.
func waitForEnter(in *bufio.Reader) {
	_, _ = in.ReadString('\n')
}

// accessLog returns the writer for metrics server access logs.
func accessLog(cfg *config.Config) io.Writer {
	if cfg.Logging.Level == "debug" {
		return os.Stderr
	}
	return io.Discard
}
