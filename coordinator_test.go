package seeker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_RandomTwoWorkers(t *testing.T) {
	cfg := completeConfig(t, Config{
		Device:      makeDevice(t, 100<<20),
		BlockSize:   4096,
		Limit:       time.Second,
		Concurrency: 2,
	})

	c, err := NewCoordinator(cfg)
	require.NoError(t, err)
	c.Start()
	t.Cleanup(c.Close)

	col := c.Wait(context.Background())
	require.False(t, col.Interrupted)
	require.Len(t, col.Results, 2)
	require.Empty(t, col.Failures())

	sets := col.Samples()
	require.Len(t, sets, 2)
	seen := map[int]bool{}
	for _, s := range sets {
		seen[s.Worker] = true
		assert.Positive(t, s.Ops)
		assert.Equal(t, s.Ops*cfg.BlockSize, s.Bytes)
		assert.Greater(t, s.Elapsed, cfg.Limit)
	}
	require.Equal(t, map[int]bool{0: true, 1: true}, seen)

	rep, err := Aggregate(sets, cfg)
	require.NoError(t, err)
	require.Equal(t, float64(rep.TotalBytes) > 0.1*float64(100<<20), rep.CacheWarning)
}

func TestCoordinator_Interrupt(t *testing.T) {
	cfg := completeConfig(t, Config{
		Device:      makeDevice(t, 100<<20),
		Limit:       30 * time.Second,
		Concurrency: 3,
		Window:      100,
	})

	c, err := NewCoordinator(cfg, WithGrace(200*time.Millisecond))
	require.NoError(t, err)
	c.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	col := c.Wait(ctx)
	require.True(t, col.Interrupted)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, col.Results, 3)
	for _, s := range col.Samples() {
		assert.Positive(t, s.Ops)
		assert.NotEmpty(t, s.Samples)
		assert.Less(t, s.Elapsed, cfg.Limit)
	}

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for workers to exit after Close")
	}
}

func TestCoordinator_InterruptBeforeAnyResult(t *testing.T) {
	cfg := completeConfig(t, Config{
		Device:      makeDevice(t, 100<<20),
		Limit:       200 * time.Millisecond,
		Concurrency: 2,
		Window:      1 << 40,
	})

	c, err := NewCoordinator(cfg, WithGrace(10*time.Millisecond))
	require.NoError(t, err)
	c.Start()
	// The window is never reached, so Close returns once the limit passes.
	t.Cleanup(c.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	col := c.Wait(ctx)
	require.True(t, col.Interrupted)
	require.Empty(t, col.Results)

	_, err = Summarize(col, cfg)
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestCoordinator_PartialFailure(t *testing.T) {
	cfg := completeConfig(t, Config{
		Device:      makeDevice(t, 10<<20),
		Mode:        Sequential,
		Concurrency: 2,
	})

	c, err := NewCoordinator(cfg)
	require.NoError(t, err)
	// Break the second worker's view of the device.
	c.workers[1].cfg.Device = "/nonexistent/device"
	c.Start()
	t.Cleanup(c.Close)

	col := c.Wait(context.Background())
	require.Len(t, col.Results, 2)
	require.Len(t, col.Samples(), 1)
	require.Len(t, col.Failures(), 1)

	rep, err := Summarize(col, cfg)
	require.NoError(t, err)
	require.Len(t, rep.Workers, 1)
	require.Len(t, rep.Failures, 1)
	require.Equal(t, 1, rep.Failures[0].Worker)
	require.Equal(t, int64(10), rep.TotalOps)
}

func TestNewCoordinator_InvalidConfig(t *testing.T) {
	_, err := NewCoordinator(Config{})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}
