// Package storage is the filesystem collaborator for document bytes. It owns
// a flat upload directory keyed by generated stored names; task records keep
// the authoritative mapping from stored name to original filename.
package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub-api/internal/utils"
)

// Store saves, probes and removes stored document files.
type Store interface {
	// Save writes an uploaded file under a generated stored name and returns
	// that name together with the full path.
	Save(c *gin.Context, file *multipart.FileHeader) (storedName, path string, err error)

	// Remove deletes a stored file. A file that is already absent is not an
	// error.
	Remove(path string) error

	// Exists reports whether the file is still present on disk.
	Exists(path string) bool
}

// LocalStore is a Store over a local directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store
// rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the root upload directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the upload under a generated stored name.
func (s *LocalStore) Save(c *gin.Context, file *multipart.FileHeader) (string, string, error) {
	storedName, err := utils.GenerateStoredName(file.Filename)
	if err != nil {
		return "", "", err
	}

	path := filepath.Join(s.dir, storedName)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", "", fmt.Errorf("failed to save uploaded file: %w", err)
	}

	documentsStored.Inc()
	return storedName, path, nil
}

// Remove deletes the file, tolerating files that are already gone.
func (s *LocalStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	documentsRemoved.Inc()
	return nil
}

// Exists reports whether the file is present on disk.
func (s *LocalStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
