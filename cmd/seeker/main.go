// Command seeker measures raw block device read performance: random-seek
// IOPS by default, sequential throughput with --sequential.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	seeker "github.com/luhtfiimanal/go-linux-seeker"
	db "github.com/luhtfiimanal/go-linux-seeker/internal/debug"
)

type options struct {
	config      string
	device      string
	limit       float64
	blocksize   string
	concurrency int
	sequential  bool
	direct      bool
	window      int64
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("seeker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "YAML file with run parameters; flags override it")
	fs.StringVar(&o.device, "device", "", "device to test (required)")
	fs.Float64Var(&o.limit, "limit", seeker.DefaultLimit.Seconds(), "time to spend on tests in seconds")
	fs.StringVar(&o.blocksize, "blocksize", "", "blocksize to use during tests (default 4KiB for random, 1MiB for sequential)")
	fs.IntVar(&o.concurrency, "c", 1, "number of parallel workers (shorthand for --concurrency)")
	fs.IntVar(&o.concurrency, "concurrency", 1, "number of parallel workers / device queue depth")
	fs.BoolVar(&o.sequential, "sequential", false, "instead of random IOPS do a sequential test")
	fs.BoolVar(&o.direct, "direct", false, "open the device with O_DIRECT")
	fs.Int64Var(&o.window, "window", seeker.DefaultWindow, "operations per latency sample")
	return fs
}

// buildConfig merges the optional config file with the flags the user set
// explicitly.
func buildConfig(fs *flag.FlagSet, o *options) (seeker.Config, error) {
	var cfg seeker.Config
	if o.config != "" {
		c, err := seeker.LoadFile(o.config)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["device"] || cfg.Device == "" {
		cfg.Device = o.device
	}
	if set["limit"] || cfg.Limit == 0 {
		cfg.Limit = time.Duration(o.limit * float64(time.Second))
	}
	if set["c"] || set["concurrency"] || cfg.Concurrency == 0 {
		cfg.Concurrency = o.concurrency
	}
	if set["window"] || cfg.Window == 0 {
		cfg.Window = o.window
	}
	if set["sequential"] {
		cfg.Mode = seeker.Random
		if o.sequential {
			cfg.Mode = seeker.Sequential
		}
	}
	if set["direct"] {
		cfg.Direct = o.direct
	}
	if o.blocksize != "" {
		bs, err := seeker.ParseBlockSize(o.blocksize)
		if err != nil {
			return cfg, err
		}
		cfg.BlockSize = bs
	}
	return cfg.Complete()
}

func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := buildConfig(fs, &o)
	if err != nil {
		fmt.Fprintf(stderr, "seeker: %v\n", err)
		return 2
	}

	if err := seeker.DropCaches(); err != nil {
		fmt.Fprintf(stderr, "-> WARNING: %v\n", err)
	} else {
		fmt.Fprintln(stderr, "-> Synced and dropped disc cache")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// Restore default handling so a second signal kills the process.
		stop()
	}()

	start := time.Now()
	fmt.Fprintln(stderr, "-> Measurements started - waiting for results")
	rep, err := seeker.Run(ctx, cfg)
	var failed *seeker.WorkersFailedError
	switch {
	case errors.Is(err, seeker.ErrEmptyResult):
		fmt.Fprintln(stderr, "-> No results collected")
		return 1
	case errors.As(err, &failed):
		fmt.Fprintf(stderr, "seeker: %v\n", failed)
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "seeker: %v\n", err)
		return 1
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	if err := writeReport(stdout, rep, host, start); err != nil {
		fmt.Fprintf(stderr, "seeker: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	code := run(os.Args[1:], os.Stdout, os.Stderr)
	db.Sync()
	os.Exit(code)
}
