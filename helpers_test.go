package seeker

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// makeDevice creates a sparse file of the given size to stand in for a
// block device.
func makeDevice(t *testing.T, size int64) string {
	t.Helper()
	pn := filepath.Join(t.TempDir(), "disk.img")
	f, err := os.Create(pn)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return pn
}

// openPty returns a PTY pair; the slave is a character device that cannot
// seek.
func openPty(t *testing.T) (master, slave string) {
	t.Helper()
	m, s, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(); s.Close() })
	return m.Name(), s.Name()
}

func uintptrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
