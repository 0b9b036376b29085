// Package scanning provides the host discovery engine of rangescan.
//
// A scan walks one or more /24 ranges, one range at a time. Each range is
// expanded into its 256 addresses, every address is probed once, responsive
// hosts are named, and a report is printed before the next range starts.
//
// # Main Components
//
//   - Range: a three-octet prefix ("10.81.1") and its 256 addresses
//   - Pool: dispatches one unit of work per address, at most K at a time
//   - Pass: the state of one range being scanned (hosts, completion count)
//   - Coordinator: runs passes in order and waits for each to drain
//   - Builder: filters, sorts and summarizes the hosts of a range
//   - Printer: console progress, reports and the closing summary table
//
// # Concurrency
//
// The Pool acquires a Limiter slot on the dispatching goroutine before each
// unit starts, so a saturated pool blocks dispatch instead of queueing work.
// Every unit releases its slot and signals completion in a deferred block,
// including when the prober or resolver panics. The Coordinator builds a
// report only after all 256 completions of a pass have been observed.
//
// Hosts are appended to a mutex-guarded Collection. Completion is counted
// with an atomic counter that also drives the progress line; the Printer
// drops progress updates that would move the percentage backwards.
//
// # Usage
//
//	prober, err := probe.New(probe.MethodICMP, probe.Options{})
//	if err != nil {
//		return err
//	}
//
//	printer := scanning.NewPrinter(os.Stdout)
//	coordinator := scanning.NewCoordinator(prober, resolve.NewSystemResolver(2*time.Second), printer,
//		scanning.WithConcurrency(32))
//
//	summary, err := coordinator.Run(ctx, scanning.ParseRanges([]string{"10.81.1", "10.81.12"}))
//	if err != nil {
//		return err
//	}
//	fmt.Println(summary.AnyResponsive())
//
// # Range Membership
//
// A host belongs to a range only when its address is the prefix followed by
// a single trailing component, so 10.81.100.5 is not part of 10.81.1.
package scanning
