// Package metrics provides interfaces for metrics collection and monitoring.
package metrics

import "time"

// Recorder defines the interface the scanner uses to report what it does.
// This interface allows for easy mocking and testing of metrics functionality.
type Recorder interface {
	// ProbeCompleted records the outcome of one reachability probe.
	ProbeCompleted(method string, reachable bool)

	// NameResolved records the outcome of one reverse lookup.
	NameResolved(resolved bool)

	// ProbeStarted and ProbeFinished track probes in flight.
	ProbeStarted()
	ProbeFinished()

	// RangeCompleted records a fully drained range.
	RangeCompleted(prefix string, responsive int, occupancy float64, duration time.Duration)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) ProbeCompleted(string, bool) {}
func (Nop) NameResolved(bool) {}
func (Nop) ProbeStarted() {}
func (Nop) ProbeFinished() {}
func (Nop) RangeCompleted(string, int, float64, time.Duration) {}

// Ensure that both implementations satisfy Recorder.
var (
	_ Recorder = Nop{}
	_ Recorder = (*PrometheusMetrics)(nil)
)
