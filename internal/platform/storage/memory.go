package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryObject is an object held by MemoryStore.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process. Used by the memory backend and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]MemoryObject)}
}

func (s *MemoryStore) Put(ctx context.Context, object, contentType string, body io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return 0, errors.New("storage: object name is required")
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.objects[object] = MemoryObject{ContentType: contentType, Data: buf.Bytes()}
	s.mu.Unlock()
	return n, nil
}

func (s *MemoryStore) Delete(ctx context.Context, object string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[object]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, object)
	return nil
}

// Object returns a stored object.
func (s *MemoryStore) Object(name string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

// Names lists stored object names in order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
