package gallery

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultSessionTTL = 30 * time.Minute

	sessionIDBytes = 18
)

// SessionOptions configures the registry.
type SessionOptions struct {
	TTL             time.Duration
	// CleanupInterval controls how often expired sessions are purged. Zero
	// selects TTL/2; a negative value disables the background purge.
	CleanupInterval time.Duration
	PageSize        int
	Logger          *zap.Logger
}

// Sessions maps visitor session ids to controllers. A session idle for
// longer than the TTL is evicted and its controller closed.
type Sessions struct {
	lister   Lister
	ttl      time.Duration
	pageSize int
	logger   *zap.Logger
	cache    *cache.Cache
}

func NewSessions(lister Lister, opts SessionOptions) *Sessions {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	interval := opts.CleanupInterval
	switch {
	case interval == 0:
		interval = ttl / 2
	case interval < 0:
		interval = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sessions{
		lister:   lister,
		ttl:      ttl,
		pageSize: opts.PageSize,
		logger:   logger.Named("gallery.sessions"),
		cache:    cache.New(ttl, interval),
	}
	s.cache.OnEvicted(func(id string, value interface{}) {
		if ctl, ok := value.(*Controller); ok {
			ctl.Close()
			s.logger.Debug("gallery session evicted", zap.String("session", id))
		}
	})
	return s
}

// Create starts a new session with the default intent, without loading it.
func (s *Sessions) Create() (string, *Controller, error) {
	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}
	ctl := NewController(s.lister, WithPageSize(s.pageSize), WithLogger(s.logger))
	if err := s.cache.Add(id, ctl, cache.DefaultExpiration); err != nil {
		return "", nil, fmt.Errorf("gallery: register session: %w", err)
	}
	return id, ctl, nil
}

// Get returns the session's controller and extends its lifetime. A closed
// controller is dropped instead of being handed out again.
func (s *Sessions) Get(id string) (*Controller, bool) {
	if id == "" {
		return nil, false
	}
	value, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	ctl, ok := value.(*Controller)
	if !ok || ctl.Closed() {
		s.cache.Delete(id)
		return nil, false
	}
	// Replace fails once the entry is gone or expired, so an eviction that
	// lands after the lookup cannot re-insert the session.
	if err := s.cache.Replace(id, ctl, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return ctl, true
}

// Delete closes and forgets a session.
func (s *Sessions) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Sessions) Len() int {
	return s.cache.ItemCount()
}

// Close closes every live session.
func (s *Sessions) Close() {
	s.cache.DeleteExpired()
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}

func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("gallery: session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
