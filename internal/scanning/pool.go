package scanning

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anstrom/rangescan/internal/config"
	"github.com/anstrom/rangescan/internal/logging"
	"github.com/anstrom/rangescan/internal/metrics"
	"github.com/anstrom/rangescan/internal/probe"
	"github.com/anstrom/rangescan/internal/resolve"
)

// ProgressFunc receives the number of finished units of a pass. It is called
// from worker goroutines, once per unit, in no particular order.
type ProgressFunc func(r Range, completed int)

// Pool probes every address of a range with bounded parallelism.
type Pool struct {
	prober      probe.Prober
	resolver    resolve.Resolver
	method      string
	concurrency int
	metrics     metrics.Recorder
	root        *logging.Logger
	logger      *logging.Logger
	progress    ProgressFunc
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets the number of units allowed in flight.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithMethod sets the probe method label used in metrics.
func WithMethod(method string) PoolOption {
	return func(p *Pool) { p.method = method }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) PoolOption {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.root = l
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) PoolOption {
	return func(p *Pool) { p.progress = fn }
}

// NewPool creates a pool. Without options it runs config.DefaultConcurrency
// units at a time and records nothing.
func NewPool(prober probe.Prober, resolver resolve.Resolver, opts ...PoolOption) *Pool {
	if resolver == nil {
		resolver = resolve.Disabled{}
	}
	p := &Pool{
		prober:      prober,
		resolver:    resolver,
		method:      string(probe.MethodICMP),
		concurrency: config.DefaultConcurrency,
		metrics:     metrics.Nop{},
		root:        logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.root.WithComponent("pool")
	return p
}

// Concurrency returns the number of units allowed in flight.
func (p *Pool) Concurrency() int {
	return p.concurrency
}

// Pass is one scan of one range. Its hosts may be read once Wait returns.
type Pass struct {
	Range   Range
	Hosts   *Collection
	Started time.Time

	limiter   *Limiter
	completed atomic.Int64
	wg        sync.WaitGroup
	done      chan struct{}
}

// Completed returns the number of finished units.
func (s *Pass) Completed() int {
	return int(s.completed.Load())
}

// Peak returns the highest number of units that were in flight at once.
func (s *Pass) Peak() int {
	return s.limiter.Peak()
}

// Done is closed once every unit of the pass has finished.
func (s *Pass) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until every unit of the pass has finished.
func (s *Pass) Wait() {
	<-s.done
}

// Scan dispatches one unit per address of r and returns once all of them
// have been dispatched. Dispatch blocks while the pool is saturated. Units
// may still be running on return; use Pass.Wait to drain.
//
// If ctx is cancelled during dispatch the undispatched addresses are counted
// as finished without being probed.
func (p *Pool) Scan(ctx context.Context, r Range) *Pass {
	pass := &Pass{
		Range:   r,
		Hosts:   NewCollection(),
		Started: time.Now(),
		limiter: NewLimiter(p.concurrency),
		done:    make(chan struct{}),
	}
	pass.wg.Add(RangeSize)
	go func() {
		pass.wg.Wait()
		close(pass.done)
	}()

	for i, address := range r.Addresses() {
		if err := pass.limiter.Acquire(ctx); err != nil {
			p.logger.WithRange(r.Prefix()).Warn("Scan interrupted",
				"skipped", RangeSize-i,
				"error", err)
			for range RangeSize - i {
				p.finish(pass)
			}
			break
		}
		go p.run(ctx, pass, address)
	}

	return pass
}

// run probes one address and, when it answers, resolves and records it. The
// slot release and completion signal happen on every exit path.
func (p *Pool) run(ctx context.Context, pass *Pass, address string) {
	p.metrics.ProbeStarted()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Probe unit panicked", "address", address, "panic", r)
		}
		p.metrics.ProbeFinished()
		pass.limiter.Release()
		p.finish(pass)
	}()

	reachable := p.prober.Probe(ctx, address)
	p.metrics.ProbeCompleted(p.method, reachable)
	if !reachable {
		return
	}

	name := p.resolver.ResolveName(ctx, address)
	p.metrics.NameResolved(name != "")
	pass.Hosts.Add(HostRecord{Address: address, Name: name})

	p.logger.DebugProbe("Host responded", address, "name", name)
}

func (p *Pool) finish(pass *Pass) {
	n := pass.completed.Add(1)
	if p.progress != nil {
		p.progress(pass.Range, int(n))
	}
	pass.wg.Done()
}
