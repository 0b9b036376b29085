package scanning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/rangescan/internal/logging"
	"github.com/anstrom/rangescan/internal/metrics"
	"github.com/anstrom/rangescan/internal/probe"
	"github.com/anstrom/rangescan/internal/resolve"
)

const durationPrecision = 10 * time.Millisecond

// RangeResult is the outcome of one range of a run.
type RangeResult struct {
	Report   Report
	Duration time.Duration
	// Peak is the highest number of probe units that ran at once.
	Peak int
}

// Summary is the outcome of a run over one or more ranges.
type Summary struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Ranges   []RangeResult
}

// AnyResponsive reports whether any range had a responsive host.
func (s *Summary) AnyResponsive() bool {
	for _, rr := range s.Ranges {
		if rr.Report.Responsive() {
			return true
		}
	}
	return false
}

// Coordinator scans ranges one after another and prints their reports.
type Coordinator struct {
	pool    *Pool
	builder *Builder
	printer *Printer
	metrics metrics.Recorder
	logger  *logging.Logger
}

// NewCoordinator creates a coordinator. The pool's progress is routed to
// printer.
func NewCoordinator(prober probe.Prober, resolver resolve.Resolver, printer *Printer, opts ...PoolOption) *Coordinator {
	c := &Coordinator{
		builder: NewBuilder(),
		printer: printer,
	}
	opts = append(opts, WithProgress(printer.Progress))
	c.pool = NewPool(prober, resolver, opts...)
	c.metrics = c.pool.metrics
	c.logger = c.pool.root.WithComponent("coordinator")
	return c
}

// SetBuilder replaces the report builder.
func (c *Coordinator) SetBuilder(b *Builder) {
	c.builder = b
}

// Run scans each range in order. A range is reported only after all of its
// addresses have finished. The returned summary holds every range that was
// reported, also when an error is returned.
func (c *Coordinator) Run(ctx context.Context, ranges []Range) (*Summary, error) {
	summary := &Summary{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	logger := c.logger.WithScanID(summary.ID)
	logger.Info("Starting scan",
		"ranges", len(ranges),
		"concurrency", c.pool.Concurrency())

	defer func() {
		summary.Duration = time.Since(summary.Started)
	}()

	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			logger.Warn("Scan cancelled", "remaining", len(ranges)-len(summary.Ranges))
			return summary, err
		}

		result, err := c.scanRange(ctx, r)
		if err != nil && ctx.Err() != nil {
			logger.Warn("Scan cancelled", "range", r.Prefix(), "remaining", len(ranges)-len(summary.Ranges))
			return summary, err
		}
		if err != nil {
			logger.ErrorScan("Range scan failed", r.Prefix(), err)
			return summary, err
		}
		summary.Ranges = append(summary.Ranges, result)

		logger.InfoScan("Range scanned", r.Prefix(),
			"responsive", len(result.Report.Hosts),
			"occupancy", result.Report.Occupancy,
			"peak", result.Peak,
			"duration", result.Duration)
	}

	summary.Duration = time.Since(summary.Started)
	c.printer.Summary(summary)
	return summary, nil
}

func (c *Coordinator) scanRange(ctx context.Context, r Range) (RangeResult, error) {
	c.printer.Start(r)

	pass := c.pool.Scan(ctx, r)
	pass.Wait()

	// Addresses skipped on cancellation count as finished but were never
	// probed, so the pass must not be reported.
	if err := ctx.Err(); err != nil {
		return RangeResult{}, err
	}
	if n := pass.Completed(); n != RangeSize {
		return RangeResult{}, fmt.Errorf("range %s drained with %d of %d completions", r, n, RangeSize)
	}
	c.printer.Complete(r)

	report := c.builder.Build(r, pass.Hosts.Snapshot())
	c.printer.Report(report)

	duration := time.Since(pass.Started)
	c.metrics.RangeCompleted(r.CIDR(), len(report.Hosts), report.Occupancy, duration)

	return RangeResult{
		Report:   report,
		Duration: duration,
		Peak:     pass.Peak(),
	}, nil
}
