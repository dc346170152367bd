package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/idempotency"
	"github.com/woodcraft-atelier/api/internal/platform/observability"
	"github.com/woodcraft-atelier/api/internal/services"
)

// InquiryHandlers accepts contact and quote requests from the public site.
type InquiryHandlers struct {
	inquiries   services.InquiryService
	limiter     *keyedRateLimiter
	idempotency idempotency.Store
	ttl         time.Duration
	logger      *zap.Logger
	clock       func() time.Time
}

type InquiryOption func(*InquiryHandlers)

// WithInquiryRateLimit caps submissions per client IP. A non-positive rate disables the limit.
func WithInquiryRateLimit(perMinute, burst int) InquiryOption {
	return func(h *InquiryHandlers) {
		h.limiter = newKeyedRateLimiter(perMinute, burst)
	}
}

// WithInquiryIdempotency replays completed submissions that carry the same Idempotency-Key.
func WithInquiryIdempotency(store idempotency.Store, ttl time.Duration) InquiryOption {
	return func(h *InquiryHandlers) {
		h.idempotency = store
		h.ttl = ttl
	}
}

func WithInquiryLogger(logger *zap.Logger) InquiryOption {
	return func(h *InquiryHandlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithInquiryClock(clock func() time.Time) InquiryOption {
	return func(h *InquiryHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

func NewInquiryHandlers(inquiries services.InquiryService, opts ...InquiryOption) *InquiryHandlers {
	h := &InquiryHandlers{
		inquiries: inquiries,
		logger:    zap.NewNop(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *InquiryHandlers) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(rateLimit(h.limiter, observability.RealIP, h.clock))
		if h.idempotency != nil {
			opts := []idempotency.MiddlewareOption{
				idempotency.WithScope(observability.RealIP),
				idempotency.WithLogger(h.logger),
				idempotency.WithClock(h.clock),
			}
			if h.ttl > 0 {
				opts = append(opts, idempotency.WithTTL(h.ttl))
			}
			r.Use(idempotency.Middleware(h.idempotency, opts...))
		}
		r.Post("/inquiries", h.submit)
	})
}

func (h *InquiryHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var submission services.InquirySubmission
	if err := decodeJSON(r, &submission); err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}

	inquiry, err := h.inquiries.Submit(ctx, submission)
	if err != nil {
		writeServiceError(ctx, w, err, "project")
		return
	}

	w.Header().Set("Location", "/api/v1/admin/inquiries/"+inquiry.ID)
	httpx.WriteJSON(w, http.StatusCreated, newInquiryPayload(inquiry))
}
