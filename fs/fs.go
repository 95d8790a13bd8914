// Package fs provides file-based storage for location records and
// generated pages.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/artdir"
)

// Checksum returns the content hash used to detect unchanged writes.
func Checksum(data []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}

// WriteFile writes data to path unless the stored content already has the
// given checksum. An empty previous checksum means the file on disk, if
// any, is hashed first. It reports whether the file was written.
func WriteFile(path string, data []byte, previous string) (bool, error) {
	sum := Checksum(data)
	if previous == "" {
		if existing, err := os.ReadFile(path); err == nil {
			previous = Checksum(existing)
		}
	}
	if sum == previous {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}

	// Write beside the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}

// WriteJSON encodes v as indented JSON and writes it with WriteFile.
func WriteJSON(path string, v any) (bool, error) {
	data, err := artdir.MarshalIndent(v)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFile(path, data, "")
}
