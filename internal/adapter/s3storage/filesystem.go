package s3storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStorage implements repository.ObjectStorage on a local directory,
// one sub-directory per bucket. Used for development and tests.
type FilesystemStorage struct {
	baseDir   string
	publicURL string
}

// NewFilesystemStorage creates the base directory if needed. publicURL, when
// set, prefixes returned URLs instead of file:// paths.
func NewFilesystemStorage(baseDir, publicURL string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FilesystemStorage{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Store writes data to <baseDir>/<bucket>/<key>. The public flag has no meaning on disk.
func (fs *FilesystemStorage) Store(ctx context.Context, data []byte, bucket, key string, public bool) (string, error) {
	base := filepath.Clean(fs.baseDir)
	path := filepath.Join(base, bucket, key)
	if !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q: path traversal detected", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}

	if fs.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", fs.publicURL, bucket, filepath.ToSlash(key)), nil
	}
	return "file://" + filepath.ToSlash(path), nil
}
