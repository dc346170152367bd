package idempotency

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/platform/httpx"
)

const (
	HeaderName       = "Idempotency-Key"
	ReplayHeaderName = "Idempotent-Replayed"

	maxKeyLength = 128
)

type middlewareConfig struct {
	ttl     time.Duration
	clock   func() time.Time
	scope   func(*http.Request) string
	logger  *zap.Logger
	maxBody int64
}

type MiddlewareOption func(*middlewareConfig)

// WithTTL configures how long completed responses are replayed.
func WithTTL(ttl time.Duration) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

func WithClock(clock func() time.Time) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithScope partitions keys per caller, usually by client address, so two
// visitors choosing the same key never see each other's responses.
func WithScope(scope func(*http.Request) string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if scope != nil {
			cfg.scope = scope
		}
	}
}

func WithLogger(logger *zap.Logger) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMaxBody caps how much of the request body is buffered for fingerprinting.
func WithMaxBody(limit int64) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if limit > 0 {
			cfg.maxBody = limit
		}
	}
}

// Middleware replays the first successful response for a repeated
// Idempotency-Key. Requests without the header pass straight through.
// Non-2xx outcomes release the key so the client may retry.
func Middleware(store Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	cfg := middlewareConfig{
		ttl:     DefaultTTL,
		clock:   time.Now,
		scope:   func(*http.Request) string { return "" },
		logger:  zap.NewNop(),
		maxBody: 64 << 10,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger := cfg.logger.Named("idempotency")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderName))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(key) > maxKeyLength {
				httpx.WriteError(ctx, w, httpx.ValidationError("invalid idempotency key", map[string]string{
					HeaderName: "must be at most 128 characters",
				}))
				return
			}

			body, err := bufferBody(r, cfg.maxBody)
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, "unable to read request body", http.StatusBadRequest))
				return
			}

			scopedKey := scoped(key, cfg.scope(r))
			fingerprint := requestFingerprint(r, body)

			reservation, err := store.Reserve(ctx, scopedKey, fingerprint, cfg.clock(), cfg.ttl)
			if err != nil {
				if errors.Is(err, ErrFingerprintMismatch) {
					httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeConflict, "idempotency key already used for a different request", http.StatusConflict))
					return
				}
				logger.Warn("reserve failed", zap.Error(err))
				httpx.WriteError(ctx, w, httpx.Unavailable("unable to process idempotency key", 1))
				return
			}

			switch reservation.State {
			case ReservationStateCompleted:
				writeStoredResponse(w, reservation.Record)
				return
			case ReservationStatePending:
				httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeConflict, "a request with this idempotency key is in progress", http.StatusConflict))
				return
			}

			recorder := newResponseRecorder()
			next.ServeHTTP(recorder, r)

			status := recorder.Status()
			if status >= 200 && status < 300 {
				resp := Response{Status: status, Headers: recorder.header, Body: recorder.body.Bytes()}
				if err := store.SaveResponse(ctx, scopedKey, fingerprint, resp, cfg.clock(), cfg.ttl); err != nil {
					logger.Warn("save response failed", zap.Error(err))
				}
			} else if err := store.Release(ctx, scopedKey, fingerprint); err != nil {
				logger.Warn("release failed", zap.Error(err))
			}

			recorder.flush(w)
		})
	}
}

func bufferBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	// Oversized bodies are fingerprinted by prefix; the handler rejects them.
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), r.Body))
	if int64(len(data)) > limit {
		return data[:limit], nil
	}
	return data, nil
}

func requestFingerprint(r *http.Request, body []byte) string {
	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteByte('|')
	b.WriteString(r.URL.Path)
	b.WriteByte('|')
	b.WriteString(r.Header.Get("Content-Type"))
	b.WriteByte('|')
	b.WriteString(sha256Hex(body))
	return sha256Hex([]byte(b.String()))
}

func scoped(key, scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = "anonymous"
	}
	return scope + "|" + key
}

func writeStoredResponse(w http.ResponseWriter, record Record) {
	header := w.Header()
	for name, values := range record.ResponseHeaders {
		header[name] = append([]string(nil), values...)
	}
	header.Set(ReplayHeaderName, "true")

	status := record.ResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(record.ResponseBody) > 0 {
		_, _ = w.Write(record.ResponseBody)
	}
}

type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header)}
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(data)
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseRecorder) flush(w http.ResponseWriter) {
	dst := w.Header()
	for name, values := range r.header {
		dst[name] = values
	}
	w.WriteHeader(r.Status())
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}
