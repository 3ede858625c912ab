package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// StoredObject describes a blob after it has been persisted.
type StoredObject struct {
	Key            string
	ContentType    string
	Size           int64
	ChecksumSHA256 string
}

// BlobStorage is the contract the attachment ledger consumes. Keys are opaque
// locators generated by the backend at store time.
type BlobStorage interface {
	Store(ctx context.Context, data []byte, originalName, contentType string) (*StoredObject, error)
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// checksum returns the lowercase hex SHA-256 of the raw bytes.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// buildKey generates a fresh blob key, keeping the original extension when
// one is present and falling back to "bin".
func buildKey(prefix, originalName string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if ext == "" {
		ext = "bin"
	}

	name := uuid.NewString() + "." + ext
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// normalizeContentType fills in the default when the client sent none.
func normalizeContentType(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
