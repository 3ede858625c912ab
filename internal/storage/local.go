package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs as files under a root directory. Writes go through a
// temp file followed by a rename so a crashed upload never leaves a partial
// blob under its final key.
type Local struct {
	root string
}

// NewLocal creates a filesystem-backed store rooted at the given directory.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Store(ctx context.Context, data []byte, originalName, contentType string) (*StoredObject, error) {
	key := buildKey("", originalName)
	destPath := filepath.Join(l.root, key)

	tmpFile, err := os.CreateTemp(l.root, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true

	return &StoredObject{
		Key:            key,
		ContentType:    normalizeContentType(contentType),
		Size:           int64(len(data)),
		ChecksumSHA256: checksum(data),
	}, nil
}

func (l *Local) Load(ctx context.Context, key string) ([]byte, error) {
	if !l.keyInsideRoot(key) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(l.root, filepath.Clean(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if !l.keyInsideRoot(key) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(l.root, filepath.Clean(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// keyInsideRoot rejects keys that would escape the storage root.
func (l *Local) keyInsideRoot(key string) bool {
	clean := filepath.Clean(key)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator)) && !filepath.IsAbs(clean)
}

var _ BlobStorage = (*Local)(nil)
