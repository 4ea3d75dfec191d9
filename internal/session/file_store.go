package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/newapi-signin/internal/constants"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get reads <dir>/<key>.json.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // The key is sanitized.
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	return data, nil
}

// Put atomically replaces <dir>/<key>.json.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(s.dir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", s.dir, err)
	}

	return utils.WriteFileAtomic(path, data, constants.DefaultFilePermissions)
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	return filepath.Join(s.dir, utils.SanitizeName(key)+constants.ExtensionJSON), nil
}
