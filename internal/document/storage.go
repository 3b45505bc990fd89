package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	documenterrors "go-lcms/internal/document/errors"

	"go.uber.org/zap"
)

// Storage is the blob store supporting documents are written to.
type Storage interface {
	// Put stores content under a slash separated key and returns its public URL.
	Put(ctx context.Context, key string, content []byte) (string, error)
	// Get returns documenterrors.ErrBlobNotFound for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// LocalStorage keeps blobs on the local filesystem under baseDir and serves
// them from baseURL.
type LocalStorage struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

func NewLocalStorage(baseDir, baseURL string, logger ...*zap.Logger) *LocalStorage {
	l := zap.L().Named("document.storage")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.storage")
	}
	return &LocalStorage{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/"), logger: l}
}

func (s *LocalStorage) Put(ctx context.Context, key string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("create blob directory failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("create directories: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		s.logger.Error("write blob failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("write blob: %w", err)
	}

	s.logger.Debug("blob stored", zap.String("key", key), zap.Int("size", len(content)))
	return s.url(key), nil
}

func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, documenterrors.ErrBlobNotFound
		}
		s.logger.Error("read blob failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return content, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("delete blob failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// resolve maps key into baseDir and refuses anything that escapes it.
func (s *LocalStorage) resolve(key string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", documenterrors.ErrInvalidPath
	}
	return absPath, nil
}

func (s *LocalStorage) url(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + path.Join(parts...)
}
