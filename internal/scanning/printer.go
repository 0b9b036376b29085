package scanning

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
)

const separator = "========================================"

// Printer writes the console report. Progress may be called from many
// goroutines; all writes are serialized.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	current Range
	best    int
	width   int
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Start begins the output of a range.
func (p *Printer) Start(r Range) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = r
	p.best = 0
	p.width = 0
	fmt.Fprintln(p.out)
}

// Progress rewrites the progress line of r in place. Counts lower than one
// already shown are ignored so the percentage never goes backwards.
func (p *Printer) Progress(r Range, completed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r != p.current {
		p.current = r
		p.best = 0
	}
	if completed <= p.best {
		return
	}
	p.best = completed

	line := fmt.Sprintf("Scanning [%s] - %.2f%%", r.CIDR(), percent(completed))
	p.width = max(p.width, len(line))
	fmt.Fprint(p.out, "\r"+line)
}

// Complete replaces the progress line with the completion line and prints
// a separator.
func (p *Printer) Complete(r Range) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("Scan [%s] - Complete", r.CIDR())
	fmt.Fprintf(p.out, "\r%-*s\n", p.width, line)
	fmt.Fprintln(p.out, separator)
}

// Report prints the hosts, occupancy and available address of a range.
func (p *Printer) Report(rep Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !rep.Responsive() {
		fmt.Fprintln(p.out, "No responsive hosts found.")
		fmt.Fprintln(p.out)
		return
	}

	fmt.Fprintln(p.out, "Responsive IPs:")
	for _, h := range rep.Hosts {
		fmt.Fprintln(p.out, h.String())
	}
	fmt.Fprintln(p.out, separator)
	fmt.Fprintf(p.out, "Range occupancy: %s\n", formatPercent(rep.Occupancy))
	if rep.Available != "" {
		fmt.Fprintf(p.out, "Random available IP: %s\n", rep.Available)
	} else {
		fmt.Fprintf(p.out, "No available address found in range %s.\n", rep.Range)
	}
	fmt.Fprintln(p.out)
}

// Summary prints the closing lines of a run.
func (p *Printer) Summary(s *Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.AnyResponsive() {
		fmt.Fprintln(p.out, "No responsive hosts found in any range.")
	}
	if len(s.Ranges) == 0 {
		return
	}

	fmt.Fprintln(p.out)
	table := tablewriter.NewWriter(p.out)
	table.Header("Range", "Responsive", "Occupancy", "Available", "Duration")
	for _, rr := range s.Ranges {
		available := rr.Report.Available
		if available == "" {
			available = "-"
		}
		_ = table.Append([]string{
			rr.Report.Range.CIDR(),
			strconv.Itoa(len(rr.Report.Hosts)),
			formatPercent(rr.Report.Occupancy),
			available,
			rr.Duration.Round(durationPrecision).String(),
		})
	}
	_ = table.Render()
}

// Done prints the exit prompt.
func (p *Printer) Done(waiting bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := "Scan complete."
	if waiting {
		msg += " Press Enter to exit."
	}
	fmt.Fprintln(p.out, "\n"+msg)
}

func percent(completed int) float64 {
	return float64(completed) / RangeSize * 100
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
