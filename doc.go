// Package seeker measures raw block device read performance on Linux.
//
// A run starts one or more workers that read directly from the device, either
// at random offsets (seek-time / IOPS test) or linearly (throughput test),
// until a time limit expires. Every worker records how long each window of
// operations took and hands its samples back over its own capacity-1 channel.
// The samples are then merged into a Report.
//
// Features:
//   - Raw syscall-based device I/O, optionally with O_DIRECT
//   - Shared-nothing workers: each owns its descriptor, buffer and PRNG
//   - Cooperative interruption, checked at sampling window boundaries
//   - Partial results on interruption or when some workers fail
//
// This package does **not** support Windows.
//
// Example usage:
//
//	cfg, err := seeker.Config{
//	    Device:      "/dev/sdb",
//	    Concurrency: 4,
//	}.Complete()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	rep, err := seeker.Run(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("IOPS: %.2f\n", rep.IOPS)
//
// Debug output is enabled per label through SEEKERDEBUG, e.g.
// SEEKERDEBUG="WORKER;COORD".
package seeker
