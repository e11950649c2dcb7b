// Package filesystem manages the local storage directory: temporary
// resource files and the note files opened for editing.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/joplin-cli/internal/pathfilter"
)

// Service confines file operations to a root directory.
type Service struct {
	root       string
	pathFilter *pathfilter.PathFilter
}

// New creates a Service rooted at root.
func New(root string, pf *pathfilter.PathFilter) *Service {
	absPath, err := filepath.Abs(root)
	if err != nil {
		absPath = filepath.Clean(root)
	}
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	return &Service{
		root:       absPath,
		pathFilter: pf,
	}
}

// Root returns the absolute storage directory.
func (s *Service) Root() string {
	return s.root
}

// ResolvePath resolves a path relative to the root and rejects anything
// that escapes it.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	normalizedPath := strings.TrimPrefix(strings.TrimSpace(relativePath), "/")

	absPath, err := filepath.Abs(filepath.Join(s.root, normalizedPath))
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(s.root, absPath)
	if err != nil {
		return "", err
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal not allowed: %s", relativePath)
	}

	return absPath, nil
}

// CreateEmptyFile creates (or truncates) name inside dir and returns its
// absolute path. name must pass the path filter.
func (s *Service) CreateEmptyFile(dir, name string) (string, error) {
	if !s.pathFilter.IsAllowed(name) {
		return "", fmt.Errorf("file name not allowed: %q", name)
	}
	fullPath, err := s.ResolvePath(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %s - %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %s - %w", name, err)
	}
	return fullPath, nil
}

// WriteFile writes data to a path relative to the root.
func (s *Service) WriteFile(path string, data []byte) (string, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %s - %w", path, err)
	}
	return fullPath, nil
}

// ReadFile reads a path relative to the root.
func (s *Service) ReadFile(path string) ([]byte, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %s - %w", path, err)
	}
	return data, nil
}

// Exists reports whether an absolute path inside the root exists.
func (s *Service) Exists(fullPath string) bool {
	if !s.contains(fullPath) {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// Remove deletes an absolute path inside the root. A missing file is not
// an error.
func (s *Service) Remove(fullPath string) error {
	if !s.contains(fullPath) {
		return fmt.Errorf("path outside storage: %s", fullPath)
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (s *Service) contains(fullPath string) bool {
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
