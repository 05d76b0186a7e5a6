package seeker

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	db "github.com/luhtfiimanal/go-linux-seeker/internal/debug"
)

// SampleSet is what one worker measured. It is owned by the worker until it
// is delivered, and never modified afterwards.
type SampleSet struct {
	Worker int

	// Samples holds one entry per window: the milliseconds it took to
	// complete Window operations.
	Samples []float64
	Ops     int64
	Bytes   int64
	Elapsed time.Duration
}

// Result is the single value a worker delivers: either Samples or Err.
type Result struct {
	Worker  int
	Samples *SampleSet
	Err     error
}

// Failed reports whether the worker ended with an error instead of samples.
func (r Result) Failed() bool {
	return r.Err != nil
}

// advancer positions the device before each read.
type advancer func(d *device) error

func randomAdvance(cfg Config, rng *rand.Rand) advancer {
	span := cfg.DeviceSize - cfg.BlockSize
	return func(d *device) error {
		off := rng.Int64N(span)
		if cfg.Direct {
			off -= off % directAlign
		}
		return d.seek(off)
	}
}

func sequentialAdvance(*device) error {
	return nil
}

// Worker runs one read loop against the device.
type Worker struct {
	id        int
	cfg       Config
	results   chan Result
	interrupt atomic.Bool
}

func newWorker(id int, cfg Config) *Worker {
	return &Worker{
		id:      id,
		cfg:     cfg,
		results: make(chan Result, 1),
	}
}

// Interrupt asks the worker to stop at the next window boundary.
func (w *Worker) Interrupt() {
	w.interrupt.Store(true)
}

func (w *Worker) run() {
	set, err := w.measure()
	if err != nil {
		db.DPrintf(db.WORKER, "worker %d failed: %v", w.id, err)
		w.deliver(Result{Worker: w.id, Err: err})
		return
	}
	db.DPrintf(db.WORKER, "worker %d done: %d ops in %v, %d samples", w.id, set.Ops, set.Elapsed, len(set.Samples))
	w.deliver(Result{Worker: w.id, Samples: set})
}

func (w *Worker) deliver(r Result) {
	select {
	case w.results <- r:
	default:
		db.DWarnf("worker %d: result already delivered, dropping %+v", w.id, r)
	}
}

func (w *Worker) advancer() advancer {
	if w.cfg.Mode == Sequential {
		return sequentialAdvance
	}
	seed := uint64(time.Now().UnixNano())
	return randomAdvance(w.cfg, rand.New(rand.NewPCG(seed, uint64(w.id))))
}

func (w *Worker) buffer() []byte {
	if w.cfg.Direct {
		return alignedBuffer(w.cfg.BlockSize, directAlign)
	}
	return make([]byte, w.cfg.BlockSize)
}

func (w *Worker) measure() (*SampleSet, error) {
	dev, err := openDevice(w.cfg.Device, w.cfg.Direct)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	advance := w.advancer()
	buf := w.buffer()
	var samples []float64
	var ops int64
	start := time.Now()
	now := start
	windowStart := start
	for {
		if err := advance(dev); err != nil {
			return nil, err
		}
		n, err := dev.read(buf)
		if err != nil {
			return nil, err
		}
		ops++
		now = time.Now()
		if ops%w.cfg.Window == 0 {
			samples = append(samples, float64(now.Sub(windowStart))/float64(time.Millisecond))
			windowStart = now
			if w.interrupt.Load() {
				db.DPrintf(db.WORKER, "worker %d interrupted after %d ops", w.id, ops)
				break
			}
		}
		if now.Sub(start) > w.cfg.Limit {
			break
		}
		if w.cfg.Mode == Sequential && (n == 0 || ops*w.cfg.BlockSize >= w.cfg.DeviceSize) {
			break
		}
	}
	return &SampleSet{
		Worker:  w.id,
		Samples: samples,
		Ops:     ops,
		Bytes:   ops * w.cfg.BlockSize,
		Elapsed: now.Sub(start),
	}, nil
}
