package seeker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSummarize_AllFailed(t *testing.T) {
	cfg := testConfig()
	col := Collection{Results: []Result{
		{Worker: 0, Err: &DeviceOpenError{Path: cfg.Device, Err: unix.EACCES}},
		{Worker: 1, Err: &DeviceIOError{Path: cfg.Device, Op: "read", Offset: 4096, Err: unix.EIO}},
	}}

	_, err := Summarize(col, cfg)
	var ferr *WorkersFailedError
	require.ErrorAs(t, err, &ferr)
	require.Len(t, ferr.Failures, 2)
	require.False(t, errors.Is(err, ErrEmptyResult))
	require.Contains(t, err.Error(), "worker 1: read /dev/sdz at offset 4096")
}

func TestSummarize_Degraded(t *testing.T) {
	cfg := testConfig()
	col := Collection{Results: []Result{
		{Worker: 1, Err: &DeviceOpenError{Path: cfg.Device, Err: unix.EACCES}},
		{Worker: 0, Samples: &SampleSet{Worker: 0, Samples: []float64{1}, Ops: 1000, Elapsed: time.Second}},
	}}

	rep, err := Summarize(col, cfg)
	require.NoError(t, err)
	require.Equal(t, int64(1000), rep.TotalOps)
	require.Len(t, rep.Failures, 1)
	require.False(t, rep.Interrupted)
}

func TestSummarize_InterruptedPartial(t *testing.T) {
	cfg := testConfig()
	col := Collection{
		Results: []Result{
			{Worker: 0, Samples: &SampleSet{Worker: 0, Ops: 10, Elapsed: time.Second}},
		},
		Interrupted: true,
	}

	rep, err := Summarize(col, cfg)
	require.NoError(t, err)
	require.True(t, rep.Interrupted)
	require.Len(t, rep.Workers, 1)
}

func TestSummarize_InterruptedWithOnlyFailures(t *testing.T) {
	cfg := testConfig()
	col := Collection{
		Results:     []Result{{Worker: 0, Err: unix.EIO}},
		Interrupted: true,
	}
	_, err := Summarize(col, cfg)
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestRun_Sequential(t *testing.T) {
	cfg := completeConfig(t, Config{
		Device:      makeDevice(t, 10<<20),
		Mode:        Sequential,
		Concurrency: 2,
	})

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rep.Workers, 2)
	require.Equal(t, int64(20), rep.TotalOps)
	require.Equal(t, int64(20<<20), rep.TotalBytes)
	require.True(t, rep.CacheWarning)
	require.Empty(t, rep.Failures)
}

func TestRun_AllWorkersFail(t *testing.T) {
	_, slave := openPty(t)

	cfg := Config{
		Device:      slave,
		BlockSize:   4096,
		Limit:       time.Second,
		Concurrency: 2,
		Window:      1000,
		DeviceSize:  1 << 20,
	}
	_, err := Run(context.Background(), cfg)
	var ferr *WorkersFailedError
	require.ErrorAs(t, err, &ferr)
	require.Len(t, ferr.Failures, 2)
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Device: "/dev/sdz"})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}
