package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodcraft-atelier/api/internal/platform/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newMediaService(t *testing.T, maxBytes int64) (MediaService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc, err := NewMediaService(MediaServiceDeps{
		Store:    store,
		Bucket:   "atelier.appspot.com",
		MaxBytes: maxBytes,
		Clock:    func() time.Time { return time.UnixMilli(1718000000000) },
	})
	require.NoError(t, err)
	return svc, store
}

func TestMediaUploadStoresSniffedImage(t *testing.T) {
	svc, store := newMediaService(t, 0)
	obj, err := svc.Upload(context.Background(), MediaUpload{
		Folder:   "projects/oak-table",
		Index:    1,
		Filename: "Front View.png",
		Size:     int64(len(pngHeader)),
		Body:     bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/oak-table/1718000000000_1_front-view.png", obj.Path)
	assert.Equal(t, "https://storage.googleapis.com/atelier.appspot.com/"+obj.Path, obj.URL)
	assert.Equal(t, "image/png", obj.ContentType)

	stored, ok := store.Object(obj.Path)
	require.True(t, ok)
	assert.Equal(t, "image/png", stored.ContentType)

	require.NoError(t, svc.Delete(context.Background(), obj.URL))
	assert.Empty(t, store.Names())
	assert.ErrorIs(t, svc.Delete(context.Background(), obj.Path), ErrNotFound)
}

func TestMediaUploadRejectsNonImages(t *testing.T) {
	svc, store := newMediaService(t, 0)
	_, err := svc.Upload(context.Background(), MediaUpload{
		Filename: "invoice.png",
		Body:     strings.NewReader("%PDF-1.7 not an image at all"),
	})
	assert.ErrorIs(t, err, ErrMediaUnsupportedType)
	assert.Empty(t, store.Names())
}

func TestMediaUploadEnforcesSizeEvenWhenUnderstated(t *testing.T) {
	svc, _ := newMediaService(t, 64)
	body := append(append([]byte{}, pngHeader...), make([]byte, 100)...)

	_, err := svc.Upload(context.Background(), MediaUpload{Filename: "a.png", Size: 500, Body: bytes.NewReader(body)})
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	_, err = svc.Upload(context.Background(), MediaUpload{Filename: "a.png", Size: 10, Body: bytes.NewReader(body)})
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestMediaUploadRejectsUnknownFolder(t *testing.T) {
	svc, _ := newMediaService(t, 0)
	_, err := svc.Upload(context.Background(), MediaUpload{Folder: "orders", Filename: "a.png", Body: bytes.NewReader(pngHeader)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "folder")
}

func TestMediaDeleteRejectsForeignURL(t *testing.T) {
	svc, _ := newMediaService(t, 0)
	err := svc.Delete(context.Background(), "https://storage.googleapis.com/other-bucket/a.png")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "path")
}
