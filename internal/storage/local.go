package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LocalStore keeps files on the local filesystem
type LocalStore struct {
	basePath string
	baseURL  string
	logger   *logrus.Logger
}

// NewLocalStore creates the base directory if needed
func NewLocalStore(basePath, baseURL string, logger *logrus.Logger) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path is required for local storage")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalStore{basePath: basePath, baseURL: baseURL, logger: logger}, nil
}

func (s *LocalStore) Name() string {
	return ProviderLocal
}

func (s *LocalStore) fullPath(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes base directory: %s", path)
	}
	return full, nil
}

// Store writes content under basePath/path
func (s *LocalStore) Store(ctx context.Context, content io.Reader, path, contentType string) (string, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", unavailable(fmt.Errorf("failed to create directory: %w", err))
	}

	file, err := os.Create(full)
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to create file: %w", err))
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", unavailable(fmt.Errorf("failed to write content: %w", err))
	}

	s.logger.WithField("path", path).Debug("Stored file on local filesystem")
	return publicURL(s.baseURL, path), nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return unavailable(fmt.Errorf("failed to delete file: %w", err))
	}
	return nil
}
