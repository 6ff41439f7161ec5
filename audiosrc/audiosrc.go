// Package audiosrc provides byte sources for MP3 playback.
package audiosrc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var errNotOpen = errors.New("audiosrc: no stream open")

// Dir serves the files of a directory. Opening a stream closes the
// previous one.
type Dir struct {
	Root string

	m mapping
}

func (d *Dir) Open(name string) (int64, error) {
	if err := d.Close(); err != nil {
		return 0, err
	}
	path := name
	if d.Root != "" && !filepath.IsAbs(name) {
		path = filepath.Join(d.Root, name)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("audiosrc: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("audiosrc: %w", err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return 0, fmt.Errorf("audiosrc: %s: %w", path, fs.ErrInvalid)
	}
	if err := d.m.open(f, st.Size()); err != nil {
		f.Close()
		return 0, fmt.Errorf("audiosrc: %s: %w", path, err)
	}
	return st.Size(), nil
}

func (d *Dir) ReadAt(p []byte, off int64) (int, error) {
	if !d.m.isOpen() {
		return 0, errNotOpen
	}
	return d.m.ReadAt(p, off)
}

func (d *Dir) Close() error {
	if !d.m.isOpen() {
		return nil
	}
	return d.m.close()
}

// Memory serves in-memory streams by name.
type Memory struct {
	Streams map[string][]byte

	cur []byte
	ok  bool
}

func (m *Memory) Open(name string) (int64, error) {
	b, ok := m.Streams[name]
	if !ok {
		return 0, fmt.Errorf("audiosrc: %s: %w", name, fs.ErrNotExist)
	}
	m.cur, m.ok = b, true
	return int64(len(b)), nil
}

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if !m.ok {
		return 0, errNotOpen
	}
	return readAt(m.cur, p, off)
}

func (m *Memory) Close() error {
	m.cur, m.ok = nil, false
	return nil
}

func readAt(b, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("audiosrc: negative offset %d", off)
	}
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
