package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DocumentArchive persists rendered documents (receipts, renewal
// proposals) so a page can be re-served without re-rendering and the
// history survives template changes.
type DocumentArchive interface {
	Save(key string, reader io.Reader) error
	Read(key string) (io.ReadCloser, error)
	Exists(key string) (bool, int64, error)
	Delete(key string) error
}

// LocalArchive implements DocumentArchive on the local filesystem.
type LocalArchive struct {
	baseDir string
}

func NewLocalArchive(baseDir string) (*LocalArchive, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{baseDir: baseDir}, nil
}

func (a *LocalArchive) Save(key string, reader io.Reader) error {
	fullPath := filepath.Join(a.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (a *LocalArchive) Read(key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(a.baseDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (a *LocalArchive) Exists(key string) (bool, int64, error) {
	info, err := os.Stat(filepath.Join(a.baseDir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (a *LocalArchive) Delete(key string) error {
	err := os.Remove(filepath.Join(a.baseDir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
