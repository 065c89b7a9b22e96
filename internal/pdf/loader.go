package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxSize bounds how much of a file Loader will read.
const DefaultMaxSize = 200 << 20

// ErrTooLarge is returned for files above the loader's size limit.
var ErrTooLarge = errors.New("pdf file too large")

// Loader resolves file locations and reads their bytes.
type Loader struct {
	// Root resolves relative paths. Empty means the working directory.
	Root string
	// MaxSize caps the file size in bytes. Zero uses DefaultMaxSize.
	MaxSize int64
}

// Resolve turns path into an absolute path and checks that it is a regular file.
func (l Loader) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no file path specified")
	}
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, path)
	}
	full, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s: %w", full, err)
		}
		return "", fmt.Errorf("checking file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", full)
	}
	return full, nil
}

// Read resolves path and returns the file contents.
func (l Loader) Read(path string) ([]byte, error) {
	full, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", full, err)
	}
	defer f.Close()

	limit := l.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", full, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, full, limit)
	}
	return data, nil
}
