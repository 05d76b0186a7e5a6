package seeker

import (
	"time"

	"github.com/montanaflynn/stats"
)

// CacheWarningRatio is the share of the device that, once read, makes the
// page cache a likely factor in the results.
const CacheWarningRatio = 0.1

// Latency summarises the window samples of one worker. OK is false when the
// worker recorded no samples, in which case the other fields are zero.
type Latency struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	OK    bool
}

// WorkerReport is the per-worker part of a Report.
type WorkerReport struct {
	Worker      int
	Ops         int64
	Bytes       int64
	Elapsed     time.Duration
	IOPS        float64
	BytesPerSec float64
	Samples     []float64
	Latency     Latency
}

// Report is the aggregate of a run.
type Report struct {
	Config  Config
	Workers []WorkerReport

	TotalOps   int64
	TotalBytes int64

	// TotalElapsed is the sum of the workers' elapsed times, not wall time.
	TotalElapsed time.Duration
	AvgElapsed   time.Duration

	IOPS           float64
	AvgIOPS        float64
	BytesPerSec    float64
	AvgBytesPerSec float64

	CacheWarning bool

	// Set by Summarize, never by Aggregate.
	Failures    []Result
	Interrupted bool
}

// Aggregate merges the SampleSets of a run. It has no side effects and
// returns ErrEmptyResult when sets is empty.
func Aggregate(sets []SampleSet, cfg Config) (Report, error) {
	if len(sets) == 0 {
		return Report{}, ErrEmptyResult
	}
	rep := Report{
		Config:  cfg,
		Workers: make([]WorkerReport, 0, len(sets)),
	}
	for _, s := range sets {
		bytes := s.Ops * cfg.BlockSize
		rep.TotalOps += s.Ops
		rep.TotalBytes += bytes
		rep.TotalElapsed += s.Elapsed
		rep.Workers = append(rep.Workers, WorkerReport{
			Worker:      s.Worker,
			Ops:         s.Ops,
			Bytes:       bytes,
			Elapsed:     s.Elapsed,
			IOPS:        rate(float64(s.Ops), s.Elapsed),
			BytesPerSec: rate(float64(bytes), s.Elapsed),
			Samples:     append([]float64(nil), s.Samples...),
			Latency:     latency(s.Samples),
		})
	}

	n := len(sets)
	rep.AvgElapsed = rep.TotalElapsed / time.Duration(n)
	rep.IOPS = rate(float64(rep.TotalOps), rep.AvgElapsed)
	rep.AvgIOPS = rep.IOPS / float64(n)
	rep.BytesPerSec = rate(float64(rep.TotalBytes), rep.AvgElapsed)
	rep.AvgBytesPerSec = rep.BytesPerSec / float64(n)
	rep.CacheWarning = float64(rep.TotalBytes) > CacheWarningRatio*float64(cfg.DeviceSize)
	return rep, nil
}

func rate(amt float64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return amt / d.Seconds()
}

func latency(samples []float64) Latency {
	if len(samples) == 0 {
		return Latency{}
	}
	// stats only fails on empty input, ruled out above.
	lo, _ := stats.Min(samples)
	hi, _ := stats.Max(samples)
	mean, _ := stats.Mean(samples)
	return Latency{
		Count: len(samples),
		Min:   lo,
		Max:   hi,
		Mean:  mean,
		OK:    true,
	}
}
