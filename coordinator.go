package seeker

import (
	"context"
	"sync"
	"time"

	db "github.com/luhtfiimanal/go-linux-seeker/internal/debug"
)

// DefaultGrace is how long Wait lets interrupted workers finish their
// current window before draining whatever has been delivered.
const DefaultGrace = 100 * time.Millisecond

// Collection holds the results read by Wait. When Interrupted is set it may
// hold fewer results than there are workers.
type Collection struct {
	Results     []Result
	Interrupted bool
}

// Samples returns the SampleSets of the successful workers.
func (c Collection) Samples() []SampleSet {
	var sets []SampleSet
	for _, r := range c.Results {
		if !r.Failed() && r.Samples != nil {
			sets = append(sets, *r.Samples)
		}
	}
	return sets
}

// Failures returns the results of the workers that ended with an error.
func (c Collection) Failures() []Result {
	var fs []Result
	for _, r := range c.Results {
		if r.Failed() {
			fs = append(fs, r)
		}
	}
	return fs
}

// Coordinator owns the workers of one run together with their result
// channels and interrupt flags.
type Coordinator struct {
	cfg       Config
	grace     time.Duration
	workers   []*Worker
	wg        sync.WaitGroup
	startOnce sync.Once
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithGrace overrides DefaultGrace.
func WithGrace(d time.Duration) Option {
	return func(c *Coordinator) { c.grace = d }
}

// NewCoordinator validates cfg and prepares cfg.Concurrency workers. No
// worker runs until Start.
func NewCoordinator(cfg Config, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Coordinator{
		cfg:     cfg,
		grace:   DefaultGrace,
		workers: make([]*Worker, cfg.Concurrency),
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.workers {
		c.workers[i] = newWorker(i, cfg)
	}
	return c, nil
}

// Start launches every worker. Calling it again has no effect.
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		db.DPrintf(db.COORD, "starting %d %v workers on %v", len(c.workers), c.cfg.Mode, c.cfg.Device)
		for _, w := range c.workers {
			c.wg.Add(1)
			go func(w *Worker) {
				defer c.wg.Done()
				w.run()
			}(w)
		}
	})
}

// Wait blocks until every worker has delivered its result. If ctx is done
// first, the workers are interrupted, given the grace period, and whatever
// results are available by then are returned without further blocking.
func (c *Coordinator) Wait(ctx context.Context) Collection {
	results := make([]Result, 0, len(c.workers))
	for i, w := range c.workers {
		select {
		case r := <-w.results:
			results = append(results, r)
			continue
		case <-ctx.Done():
		}

		db.DPrintf(db.COORD, "interrupted with %d/%d results", len(results), len(c.workers))
		c.Interrupt()
		time.Sleep(c.grace)
		for _, w := range c.workers[i:] {
			select {
			case r := <-w.results:
				results = append(results, r)
			default:
				db.DPrintf(db.COORD, "worker %d did not deliver within %v", w.id, c.grace)
			}
		}
		return Collection{Results: results, Interrupted: true}
	}
	return Collection{Results: results}
}

// Interrupt sets the interrupt flag of every worker.
func (c *Coordinator) Interrupt() {
	for _, w := range c.workers {
		w.Interrupt()
	}
}

// Close interrupts the workers and waits for all of them to return. A
// worker in the middle of a window finishes that window first.
func (c *Coordinator) Close() {
	c.Interrupt()
	c.wg.Wait()
}
