package service

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for blob storage backends holding the
// raw bytes of uploaded media. Records in the database reference objects by
// storage key.
type ObjectStorage interface {
	// Upload writes the object under the given key with the given content type.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error

	// Download opens the object for reading. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying bucket handle.
	Close() error
}
