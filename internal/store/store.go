// Package store persists in-progress form snapshots between sessions.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is a key-value store of form snapshots.
type Store interface {
	Save(key string, facts form.Facts) error
	Load(key string) (form.Facts, error)
	Delete(key string) error
}

// FileStore keeps one JSON file per key under a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore returns a store rooted at dir, creating it when needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Save writes facts under key. The file is replaced atomically so a crash
// never leaves a partial snapshot behind.
func (s *FileStore) Save(key string, facts form.Facts) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("op", "store.Save"),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load returns the snapshot saved under key with its derived fields
// recomputed, or ErrNotFound.
func (s *FileStore) Load(key string) (form.Facts, error) {
	path, err := s.path(key)
	if err != nil {
		return form.Facts{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return form.Facts{}, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return form.Facts{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var facts form.Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return form.Facts{}, fmt.Errorf("failed to decode snapshot %q: %w", key, err)
	}
	return facts.Normalize(), nil
}

// Delete removes the snapshot under key. Deleting a missing key is not an
// error.
func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
