package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const publicCacheControl = "public, max-age=31536000, immutable"

// ErrObjectNotFound is returned when deleting an object that does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore writes and removes objects in a single bucket.
type ObjectStore interface {
	Put(ctx context.Context, object, contentType string, body io.Reader) (int64, error)
	Delete(ctx context.Context, object string) error
}

// BucketStore is an ObjectStore backed by a Cloud Storage bucket handle,
// typically the Firebase default bucket.
type BucketStore struct {
	bucket *gcs.BucketHandle
}

// NewBucketStore constructs a BucketStore for the provided handle.
func NewBucketStore(bucket *gcs.BucketHandle) (*BucketStore, error) {
	if bucket == nil {
		return nil, errors.New("storage: bucket handle is required")
	}
	return &BucketStore{bucket: bucket}, nil
}

// Put streams body into object. A failed copy aborts the upload.
func (s *BucketStore) Put(ctx context.Context, object, contentType string, body io.Reader) (int64, error) {
	object = strings.TrimSpace(object)
	if object == "" {
		return 0, errors.New("storage: object name is required")
	}
	if body == nil {
		return 0, errors.New("storage: body is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = publicCacheControl

	n, err := io.Copy(w, body)
	if err != nil {
		cancel()
		_ = w.Close()
		return 0, fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("storage: finalize %s: %w", object, err)
	}
	return n, nil
}

// Delete removes object, mapping a missing object to ErrObjectNotFound.
func (s *BucketStore) Delete(ctx context.Context, object string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return errors.New("storage: object name is required")
	}
	if err := s.bucket.Object(object).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("storage: delete %s: %w", object, err)
	}
	return nil
}
