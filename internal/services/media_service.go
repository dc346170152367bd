package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/platform/storage"
)

const defaultMaxUploadBytes int64 = 5 << 20

var (
	ErrMediaTooLarge        = errors.New("media: file exceeds the upload limit")
	ErrMediaUnsupportedType = errors.New("media: only JPEG, PNG and WebP images are accepted")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type MediaServiceDeps struct {
	Store         storage.ObjectStore
	Bucket        string
	PublicBaseURL string
	MaxBytes      int64
	Clock         func() time.Time
	Logger        *zap.Logger
}

type mediaService struct {
	store    storage.ObjectStore
	bucket   string
	baseURL  string
	maxBytes int64
	clock    func() time.Time
	logger   *zap.Logger
}

var _ MediaService = (*mediaService)(nil)

func NewMediaService(deps MediaServiceDeps) (MediaService, error) {
	if deps.Store == nil {
		return nil, ErrMediaStorageMissing
	}
	if strings.TrimSpace(deps.Bucket) == "" && strings.TrimSpace(deps.PublicBaseURL) == "" {
		return nil, errors.New("media service: bucket or public base url is required")
	}
	maxBytes := deps.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mediaService{
		store:    deps.Store,
		bucket:   strings.TrimSpace(deps.Bucket),
		baseURL:  strings.TrimRight(strings.TrimSpace(deps.PublicBaseURL), "/"),
		maxBytes: maxBytes,
		clock:    clock,
		logger:   logger.Named("media"),
	}, nil
}

// Upload stores one image. The declared size is checked first and the body is
// read with a hard cap so an understated size cannot bypass the limit.
func (s *mediaService) Upload(ctx context.Context, upload MediaUpload) (MediaObject, error) {
	folder, scope := splitFolder(upload.Folder)
	if !storage.KnownFolder(folder) {
		verr := &ValidationError{}
		verr.Add("folder", "must be one of projects, profile, testimonials")
		return MediaObject{}, verr
	}
	if upload.Body == nil {
		verr := &ValidationError{}
		verr.Add("file", "is required")
		return MediaObject{}, verr
	}
	if upload.Size > s.maxBytes {
		return MediaObject{}, fmt.Errorf("%w (%d bytes)", ErrMediaTooLarge, s.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		return MediaObject{}, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return MediaObject{}, fmt.Errorf("%w (%d bytes)", ErrMediaTooLarge, s.maxBytes)
	}
	if len(data) == 0 {
		verr := &ValidationError{}
		verr.Add("file", "must not be empty")
		return MediaObject{}, verr
	}

	contentType := detectImageType(data)
	if contentType == "" {
		return MediaObject{}, ErrMediaUnsupportedType
	}

	path, err := storage.BuildObjectPath(folder, storage.PathParams{
		Scope:    scope,
		Index:    upload.Index,
		FileName: upload.Filename,
		Now:      s.clock(),
	})
	if err != nil {
		verr := &ValidationError{}
		verr.Add("file", err.Error())
		return MediaObject{}, verr
	}

	size, err := s.store.Put(ctx, path, contentType, bytes.NewReader(data))
	if err != nil {
		return MediaObject{}, fmt.Errorf("media: store %s: %w", path, err)
	}
	s.logger.Info("media uploaded",
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)
	return MediaObject{
		Path:        path,
		URL:         storage.PublicURL(s.baseURL, s.bucket, path),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Delete accepts an object path or any URL form returned for this bucket.
func (s *mediaService) Delete(ctx context.Context, pathOrURL string) error {
	path, err := storage.ObjectPath(s.baseURL, s.bucket, pathOrURL)
	if err != nil {
		verr := &ValidationError{}
		verr.Add("path", "must reference an object in the media bucket")
		return verr
	}
	if err := s.store.Delete(ctx, path); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return notFound("media", path)
		}
		return fmt.Errorf("media: delete %s: %w", path, err)
	}
	s.logger.Info("media deleted", zap.String("path", path))
	return nil
}

// splitFolder turns "projects/<id>" into the folder and its scope.
func splitFolder(raw string) (storage.MediaFolder, string) {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" {
		return storage.FolderProjects, ""
	}
	folder, scope, _ := strings.Cut(raw, "/")
	return storage.MediaFolder(strings.ToLower(folder)), scope
}

func detectImageType(data []byte) string {
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed
		}
	}
	return ""
}
