package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"riichiscore/internal/ports"
)

// FileStore implements ports.SnapshotStore on a single JSON file. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// stored document.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the encoded match document, replacing any previous version.
func (fs *FileStore) Save(ctx context.Context, doc []byte) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".match_state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write match document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace match document: %w", err)
	}
	return nil
}

// Load reads the stored match document; absence is not an error.
func (fs *FileStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read match document: %w", err)
	}
	return data, true, nil
}

var _ ports.SnapshotStore = (*FileStore)(nil)
