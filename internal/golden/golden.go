// Package golden compares test output against files in testdata.
package golden

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// CompareText compares got with the content of the golden file at
// path, or writes got to path if update is set.
func CompareText(path string, update bool, got []byte) error {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		return os.WriteFile(path, got, 0o640)
	}
	want, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Tolerate checkouts with CRLF line endings.
	want = bytes.ReplaceAll(want, []byte("\r\n"), []byte("\n"))
	if bytes.Equal(got, want) {
		return nil
	}
	gotLines := bytes.Split(got, []byte("\n"))
	wantLines := bytes.Split(want, []byte("\n"))
	for i := range min(len(gotLines), len(wantLines)) {
		if g, w := gotLines[i], wantLines[i]; !bytes.Equal(g, w) {
			return fmt.Errorf("%s:%d: got %q, want %q", path, i+1, g, w)
		}
	}
	return fmt.Errorf("%s: got %d lines, want %d", path, len(gotLines), len(wantLines))
}
