// Package storage implements the ObjectStorage interface on top of the
// Go CDK blob abstraction, so the bucket backend (local filesystem, in-memory
// or S3-compatible) is chosen by the configured URL alone.
package storage

import (
	"context"
	"io"
	"log/slog"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Registered bucket backends, selected via the storage.bucketUrl scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"harbor/config"
	"harbor/internal/domain/lifecycle"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// blobStorage implements service.ObjectStorage using a Go CDK bucket.
type blobStorage struct {
	bucket *blob.Bucket
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and wires its lifecycle.
func New(params Params) (service.ObjectStorage, error) {
	if params.Config.Storage == nil || params.Config.Storage.BucketURL == "" {
		return nil, errors.New("storage.bucketUrl is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, params.Config.Storage.BucketURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open blob bucket")
	}

	params.Logger.Info("Blob storage opened",
		slog.String("bucketUrl", params.Config.Storage.BucketURL),
	)

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return &blobStorage{bucket: bucket}, nil
}

// NewWithBucket wraps an already-open bucket. Tests use this with memblob.
func NewWithBucket(bucket *blob.Bucket) service.ObjectStorage {
	return &blobStorage{bucket: bucket}
}

// Upload writes the object under the given key.
func (s *blobStorage) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, "failed to open blob writer")
	}

	if _, err := io.Copy(w, body); err != nil {
		w.Close()

		return errors.Wrap(err, "failed to write blob")
	}

	return errors.Wrap(w.Close(), "failed to finalize blob")
}

// Download opens the object for reading. The caller closes the reader.
func (s *blobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open blob reader")
	}

	return r, nil
}

// Delete removes the object. An absent key is treated as already deleted.
func (s *blobStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrap(err, "failed to delete blob")
	}

	return nil
}

// Close releases the underlying bucket handle.
func (s *blobStorage) Close() error {
	return s.bucket.Close()
}
