package seeker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult is returned when no worker handed back a SampleSet, e.g. the
// run was interrupted before any worker finished.
var ErrEmptyResult = errors.New("no worker returned samples")

// ErrNotRoot is returned by DropCaches when the page cache could not be
// dropped for lack of privileges. Caches were still synced.
var ErrNotRoot = errors.New("not running as root, unable to drop caches")

// ConfigError reports an invalid Config. It is returned before any worker starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DeviceOpenError is delivered by a worker that could not open the device.
type DeviceOpenError struct {
	Path string
	Err  error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *DeviceOpenError) Unwrap() error { return e.Err }

// DeviceIOError is delivered by a worker whose seek or read failed mid-run.
type DeviceIOError struct {
	Path   string
	Op     string // "seek" or "read"
	Offset int64
	Err    error
}

func (e *DeviceIOError) Error() string {
	return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
}

func (e *DeviceIOError) Unwrap() error { return e.Err }

// WorkersFailedError is returned when every worker failed. It is distinct
// from ErrEmptyResult, which means no worker delivered anything at all.
type WorkersFailedError struct {
	Failures []Result
}

func (e *WorkersFailedError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("worker %d: %v", f.Worker, f.Err))
	}
	return fmt.Sprintf("all %d workers failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}
