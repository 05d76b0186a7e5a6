package seeker

import (
	"context"

	db "github.com/luhtfiimanal/go-linux-seeker/internal/debug"
)

// Run measures cfg.Device with cfg.Concurrency workers until cfg.Limit
// elapses or ctx is cancelled. Cancelling ctx is not an error: the report
// then covers whichever workers delivered in time.
//
// cfg must already be complete; see Config.Complete.
func Run(ctx context.Context, cfg Config, opts ...Option) (Report, error) {
	c, err := NewCoordinator(cfg, opts...)
	if err != nil {
		return Report{}, err
	}
	c.Start()
	col := c.Wait(ctx)
	c.Close()
	return Summarize(col, cfg)
}

// Summarize turns the collected results into a Report. Failed workers are
// logged and listed in the report; the run only fails when no worker
// delivered samples.
func Summarize(col Collection, cfg Config) (Report, error) {
	failures := col.Failures()
	for _, f := range failures {
		db.DWarnf("worker %d failed: %v", f.Worker, f.Err)
	}

	sets := col.Samples()
	if len(sets) == 0 {
		if len(failures) > 0 && len(failures) >= cfg.Concurrency {
			return Report{}, &WorkersFailedError{Failures: failures}
		}
		return Report{}, ErrEmptyResult
	}

	rep, err := Aggregate(sets, cfg)
	if err != nil {
		return Report{}, err
	}
	rep.Failures = failures
	rep.Interrupted = col.Interrupted
	if col.Interrupted {
		db.DPrintf(db.ALWAYS, "interrupted, reporting %d of %d workers", len(sets), cfg.Concurrency)
	}
	return rep, nil
}
