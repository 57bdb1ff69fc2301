package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// In localfs this is the same object_key.
	// In gdrive it is the real fileId (needed to read/resolve later).
	ObjectKey string
	Size      int64
}

// StorageProvider: implementations (localfs, gdrive, s3, etc.)
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, objectKey string) error

	// PublicURL resolves a browser-reachable URL for an uploaded object.
	// Returns an error when the provider cannot produce one.
	PublicURL(ctx context.Context, objectKey string) (string, error)
}
