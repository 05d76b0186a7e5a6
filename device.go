package seeker

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	db "github.com/luhtfiimanal/go-linux-seeker/internal/debug"
)

var dropCachesPath = "/proc/sys/vm/drop_caches"

// device is a raw read-only file descriptor on the device under test.
type device struct {
	fd        int
	path      string
	offset    int64
	closeOnce sync.Once
}

func openDevice(path string, direct bool) (*device, error) {
	flags := unix.O_RDONLY | unix.O_NOCTTY | unix.O_CLOEXEC
	if direct {
		flags |= unix.O_DIRECT
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, &DeviceOpenError{Path: path, Err: err}
	}
	return &device{fd: fd, path: path}, nil
}

func (d *device) seek(off int64) error {
	pos, err := unix.Seek(d.fd, off, unix.SEEK_SET)
	if err != nil {
		return &DeviceIOError{Path: d.path, Op: "seek", Offset: off, Err: err}
	}
	d.offset = pos
	return nil
}

// read fills buf from the current position. A short or zero-length read is
// not an error.
func (d *device) read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &DeviceIOError{Path: d.path, Op: "read", Offset: d.offset, Err: err}
		}
		d.offset += int64(n)
		return n, nil
	}
}

// Close is safe to call multiple times; subsequent calls are no-ops.
func (d *device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = unix.Close(d.fd)
	})
	return err
}

// DeviceSize returns the size in bytes of the device or file at path. The
// position is restored after seeking to the end.
func DeviceSize(path string) (int64, error) {
	d, err := openDevice(path, false)
	if err != nil {
		return 0, err
	}
	defer d.Close()

	cur, err := unix.Seek(d.fd, 0, unix.SEEK_CUR)
	if err != nil {
		return 0, &DeviceIOError{Path: path, Op: "seek", Err: err}
	}
	size, err := unix.Seek(d.fd, 0, unix.SEEK_END)
	if err != nil {
		return 0, &DeviceIOError{Path: path, Op: "seek", Offset: cur, Err: err}
	}
	if _, err := unix.Seek(d.fd, cur, unix.SEEK_SET); err != nil {
		return 0, &DeviceIOError{Path: path, Op: "seek", Offset: cur, Err: err}
	}
	return size, nil
}

// DropCaches flushes dirty pages and, when running as root, drops the page
// cache so that earlier reads do not skew the measurement. Without root it
// only syncs and returns ErrNotRoot.
func DropCaches() error {
	unix.Sync()
	if unix.Geteuid() != 0 {
		return ErrNotRoot
	}
	db.DPrintf(db.DEVICE, "dropping caches via %v", dropCachesPath)
	return os.WriteFile(dropCachesPath, []byte("3"), 0)
}

// alignedBuffer returns a size byte slice whose first byte sits on an align
// boundary, as O_DIRECT requires.
func alignedBuffer(size int64, align int) []byte {
	raw := make([]byte, size+int64(align))
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := int(uintptr(align)-(addr%uintptr(align))) % align
	return raw[off : int64(off)+size]
}
