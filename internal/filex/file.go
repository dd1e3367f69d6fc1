// Package filex holds small filesystem helpers for the client.
package filex

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// LocalFile is a file opened for upload. The caller must Close it.
type LocalFile struct {
	*os.File
	Name        string
	Size        int64
	ContentType string
}

// OpenLocalFile opens path and reports its base name, size and a content
// type guessed from the extension (application/octet-stream when unknown).
func OpenLocalFile(path string) (*LocalFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &LocalFile{File: f, Name: filepath.Base(path), Size: info.Size(), ContentType: ct}, nil
}
