// Package storage implements the media bucket: a flat object namespace
// addressed by storage path, with two interchangeable backends.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/server/config"
)

// ObjectInfo describes one stored object as returned by List.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// Bucket is the object store holding media bytes.
//
// Upload with overwrite=false fails with common.ErrConflict when the path is
// taken. SignURL fails with common.ErrSigningFailed when the object is
// missing or access is denied.
type Bucket interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) error
	SignURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Remove(ctx context.Context, paths ...string) error
}

// New builds the bucket selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Bucket, error) {
	switch cfg.StorageBackend {
	case "", config.StorageS3:
		return NewS3Bucket(ctx, cfg)
	case config.StorageMinio:
		return NewMinioBucket(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
