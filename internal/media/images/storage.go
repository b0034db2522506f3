// Package images prepares uploaded photos and stores them on disk.
package images

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when no image is stored for an id.
var ErrNotFound = errors.New("image not found")

// Storage keeps one JPEG per id under a directory. Safe for concurrent use.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage creates {basePath}/{subdir} and returns a Storage rooted there.
func NewStorage(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{basePath: storagePath}, nil
}

// Save writes the image for id, replacing any previous one.
func (s *Storage) Save(id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so readers never observe a partial file.
	tmp := s.Path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(id)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move image file: %w", err)
	}
	return nil
}

// Get reads the image for id.
func (s *Storage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Exists reports whether an image is stored for id.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes the image for id. Deleting a missing image is not an error.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// ETag returns a quoted content hash suitable for HTTP caching.
func ETag(data []byte) string {
	return fmt.Sprintf(`"%x"`, sha256.Sum256(data))
}

// Path returns the file path for id's image.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.basePath, id+".jpg")
}
