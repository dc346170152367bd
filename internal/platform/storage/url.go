package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	gcsPublicHost       = "storage.googleapis.com"
	firebaseStorageHost = "firebasestorage.googleapis.com"
)

// ErrInvalidObjectRef is returned when a path or URL does not name an object in the bucket.
var ErrInvalidObjectRef = errors.New("storage: invalid object reference")

// PublicURL returns the download URL for object. Without a configured base it
// points at the public Cloud Storage endpoint for bucket.
func PublicURL(base, bucket, object string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "https://" + gcsPublicHost + "/" + bucket
	}
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return base + "/" + strings.Join(segments, "/")
}

// ObjectPath resolves ref to an object path. ref may be a bare path, a URL built
// by PublicURL, a gs:// URI or a Firebase download URL for bucket.
func ObjectPath(base, bucket, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidObjectRef
	}
	if !strings.Contains(ref, "://") {
		return cleanObjectPath(strings.TrimPrefix(ref, "/"))
	}

	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base != "" && strings.HasPrefix(ref, base+"/") {
		return unescapeObjectPath(strings.TrimPrefix(ref, base+"/"))
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidObjectRef, err)
	}
	switch {
	case u.Scheme == "gs":
		if u.Host != bucket {
			return "", fmt.Errorf("%w: bucket %q", ErrInvalidObjectRef, u.Host)
		}
		return cleanObjectPath(strings.TrimPrefix(u.Path, "/"))
	case u.Host == gcsPublicHost:
		prefix := "/" + bucket + "/"
		if !strings.HasPrefix(u.EscapedPath(), prefix) {
			return "", fmt.Errorf("%w: bucket mismatch", ErrInvalidObjectRef)
		}
		return unescapeObjectPath(strings.TrimPrefix(u.EscapedPath(), prefix))
	case u.Host == firebaseStorageHost:
		prefix := "/v0/b/" + bucket + "/o/"
		if !strings.HasPrefix(u.EscapedPath(), prefix) {
			return "", fmt.Errorf("%w: bucket mismatch", ErrInvalidObjectRef)
		}
		return unescapeObjectPath(strings.TrimPrefix(u.EscapedPath(), prefix))
	}
	return "", fmt.Errorf("%w: unrecognised host %q", ErrInvalidObjectRef, u.Host)
}

func unescapeObjectPath(escaped string) (string, error) {
	if i := strings.IndexByte(escaped, '?'); i >= 0 {
		escaped = escaped[:i]
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidObjectRef, err)
	}
	return cleanObjectPath(path)
}

func cleanObjectPath(path string) (string, error) {
	if path == "" || strings.HasSuffix(path, "/") {
		return "", ErrInvalidObjectRef
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidObjectRef
		}
	}
	return path, nil
}
