package audiosrc

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDir(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x00}, 300)
	if err := os.WriteFile(filepath.Join(dir, "song.mp3"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.mp3"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	src := &Dir{Root: dir}
	defer src.Close()

	if _, err := src.ReadAt(make([]byte, 1), 0); err == nil {
		t.Error("read succeeded before open")
	}
	size, err := src.Open("song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len(content)) {
		t.Fatalf("size %d, want %d", size, len(content))
	}
	buf := make([]byte, 512)
	n, err := src.ReadAt(buf, 1000)
	if n != 200 || !errors.Is(err, io.EOF) {
		t.Errorf("tail read returned (%d, %v), want (200, EOF)", n, err)
	}
	if !bytes.Equal(buf[:n], content[1000:]) {
		t.Error("tail read returned wrong content")
	}
	n, err = src.ReadAt(buf, 0)
	if n != len(buf) || err != nil {
		t.Errorf("head read returned (%d, %v)", n, err)
	}

	size, err = src.Open("empty.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if size != 0 {
		t.Errorf("empty file has size %d", size)
	}
	if _, err := src.Open("missing.mp3"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("opening missing file returned %v", err)
	}
	if err := src.Close(); err != nil {
		t.Error(err)
	}
}

func TestMemory(t *testing.T) {
	src := &Memory{Streams: map[string][]byte{
		"beep": {1, 2, 3, 4, 5},
	}}
	if _, err := src.Open("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("opening missing stream returned %v", err)
	}
	size, err := src.Open("beep")
	if err != nil {
		t.Fatal(err)
	}
	if size != 5 {
		t.Errorf("size %d, want 5", size)
	}
	buf := make([]byte, 3)
	if n, err := src.ReadAt(buf, 3); n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("read returned (%d, %v), want (2, EOF)", n, err)
	}
	if _, err := src.ReadAt(buf, -1); err == nil {
		t.Error("negative offset accepted")
	}
	src.Close()
	if _, err := src.ReadAt(buf, 0); err == nil {
		t.Error("read succeeded after close")
	}
}
