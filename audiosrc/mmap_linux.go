package audiosrc

import (
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

var errTooLarge = errors.New("file too large to map")

// mapLen converts a file size to a mapping length of at most limit
// bytes.
func mapLen(size, limit int64) (int, error) {
	if size < 0 || size > limit {
		return 0, fmt.Errorf("%w: %d bytes", errTooLarge, size)
	}
	return int(size), nil
}

// mapping maps a file read-only into memory.
type mapping struct {
	data []byte
	f    *os.File
}

func (m *mapping) open(f *os.File, size int64) error {
	if size == 0 {
		m.f = f
		m.data = []byte{}
		return nil
	}
	n, err := mapLen(size, math.MaxInt)
	if err != nil {
		return err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	// The mapping outlives the descriptor.
	if err := f.Close(); err != nil {
		unix.Munmap(data)
		return err
	}
	m.data = data
	return nil
}

func (m *mapping) isOpen() bool {
	return m.data != nil
}

func (m *mapping) ReadAt(p []byte, off int64) (int, error) {
	return readAt(m.data, p, off)
}

func (m *mapping) close() error {
	data, f := m.data, m.f
	*m = mapping{}
	if f != nil {
		return f.Close()
	}
	return unix.Munmap(data)
}
