package storage

import (
	"context"
	"io"
	"time"
)

// DefaultPresignedURLExpiry is how long an export download link stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// ArchiveStorage keeps generated export files and hands out temporary
// download links for them.
type ArchiveStorage interface {
	// PutObject uploads body under objectKey.
	PutObject(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
