package storage

import (
	"context"
	"fmt"

	"taskforge/internal/config"
)

// NewFromConfig creates a BlobStorage implementation based on the configured
// storage type.
func NewFromConfig(ctx context.Context, cfg *config.Config) (BlobStorage, error) {
	switch cfg.StorageType {
	case "memory":
		return NewMemory(), nil
	case "local":
		if cfg.StorageLocalDir == "" {
			return nil, fmt.Errorf("local storage requires STORAGE_LOCAL_DIR to be set")
		}
		return NewLocal(cfg.StorageLocalDir)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}
