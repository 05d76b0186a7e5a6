package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	seeker "github.com/luhtfiimanal/go-linux-seeker"
)

const sampleHead = 7

func bytesRate(bps float64) string {
	return humanize.IBytes(uint64(bps)) + "/s"
}

func formatSamples(s []float64) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, " ")
}

func writeReport(w io.Writer, rep seeker.Report, host string, start time.Time) error {
	cfg := rep.Config
	kind := "Random-seek"
	opsLabel := "Seeks:      "
	if cfg.Mode == seeker.Sequential {
		kind = "Sequential read"
		opsLabel = "Blocks read:"
	}

	var b strings.Builder
	fmt.Fprintln(&b, "============ RESULTS =============")
	fmt.Fprintf(&b, "%s test on %s at %s\n", kind, host, start.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "device=%s (%s) blocksize=%d concurrency=%d time_limit=%v\n",
		cfg.Device, humanize.IBytes(uint64(cfg.DeviceSize)), cfg.BlockSize, cfg.Concurrency, cfg.Limit)
	if rep.Interrupted {
		fmt.Fprintf(&b, "-> Interrupted: partial results from %d of %d workers\n", len(rep.Workers), cfg.Concurrency)
	}
	if rep.CacheWarning {
		fmt.Fprintf(&b, "-> WARNING: Read over %.0f%% of device size - caching will impact the results\n", seeker.CacheWarningRatio*100)
	}

	fmt.Fprintln(&b, "=== Totals")
	fmt.Fprintf(&b, "IOPS: %.2f (avg=%.2f)\n", rep.IOPS, rep.AvgIOPS)
	fmt.Fprintf(&b, "Throughput: %s (avg=%s)\n", bytesRate(rep.BytesPerSec), bytesRate(rep.AvgBytesPerSec))

	for _, wr := range rep.Workers {
		fmt.Fprintf(&b, "\n== Worker %d\n", wr.Worker)
		fmt.Fprintf(&b, "   %s %d (%.1f /s)\n", opsLabel, wr.Ops, wr.IOPS)
		fmt.Fprintf(&b, "   Bytes read:   %s (%s)\n", humanize.IBytes(uint64(wr.Bytes)), bytesRate(wr.BytesPerSec))
		if !wr.Latency.OK {
			fmt.Fprintln(&b, "   Window times[ms]: no data")
			continue
		}
		head, tail := wr.Samples, wr.Samples
		if len(head) > sampleHead {
			head = head[:sampleHead]
			tail = tail[len(tail)-sampleHead:]
		}
		fmt.Fprintf(&b, "   Window times[ms]: %s (...) TAIL: %s\n", formatSamples(head), formatSamples(tail))
		fmt.Fprintf(&b, "   Average from windows: %.3f [ms]\n", wr.Latency.Mean)
		fmt.Fprintf(&b, "   Minimal / maximal: %.4f / %.4f [ms]\n", wr.Latency.Min, wr.Latency.Max)
	}

	for _, f := range rep.Failures {
		fmt.Fprintf(&b, "\n== Worker %d FAILED: %v\n", f.Worker, f.Err)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
