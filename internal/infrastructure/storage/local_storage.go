package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
)

var errLocalStorageDisabled = errors.New("local storage is not configured; set BLOB_LOCAL_STORAGE_PATH to enable")

// LocalStorage stores attachment objects on the local filesystem. Intended
// for development; the S3 backend is the production default.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
	disabled bool
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		logger.Warn().Msg("BLOB_LOCAL_STORAGE_PATH is not set; local storage will be disabled")
		return &LocalStorage{log: logger, disabled: true}, nil
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) ensureEnabled() error {
	if l.disabled {
		return errLocalStorageDisabled
	}
	return nil
}

// Upload stores a file on the local filesystem.
func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := l.ensureEnabled(); err != nil {
		return err
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("file uploaded to local storage")

	return nil
}

// PublicURL returns the serving URL for a stored object.
func (l *LocalStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", l.baseURL, filepath.ToSlash(key))
}

// RemoveByURL deletes the file the public URL points at.
func (l *LocalStorage) RemoveByURL(ctx context.Context, url string) error {
	if err := l.ensureEnabled(); err != nil {
		return err
	}
	if l.baseURL == "" || !strings.HasPrefix(url, l.baseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(url, l.baseURL+"/")
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
