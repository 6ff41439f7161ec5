//go:build !linux

package audiosrc

import (
	"os"
)

type mapping struct {
	f *os.File
}

func (m *mapping) open(f *os.File, size int64) error {
	m.f = f
	return nil
}

func (m *mapping) isOpen() bool {
	return m.f != nil
}

func (m *mapping) ReadAt(p []byte, off int64) (int, error) {
	return m.f.ReadAt(p, off)
}

func (m *mapping) close() error {
	f := m.f
	m.f = nil
	return f.Close()
}
