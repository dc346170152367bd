package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/gallery"
	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
)

const (
	defaultGalleryCookie = "gallery_session"
	galleryHeader        = "X-Gallery-Session"
)

// GalleryHandlers exposes per-visitor gallery sessions: filter changes reset
// the listing and "load more" appends the next page.
type GalleryHandlers struct {
	sessions     *gallery.Sessions
	cookieName   string
	secureCookie bool
}

type GalleryOption func(*GalleryHandlers)

func WithGalleryCookie(name string, secure bool) GalleryOption {
	return func(h *GalleryHandlers) {
		if name = strings.TrimSpace(name); name != "" {
			h.cookieName = name
		}
		h.secureCookie = secure
	}
}

func NewGalleryHandlers(sessions *gallery.Sessions, opts ...GalleryOption) *GalleryHandlers {
	h := &GalleryHandlers{sessions: sessions, cookieName: defaultGalleryCookie}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *GalleryHandlers) Routes(r chi.Router) {
	r.Post("/gallery/sessions", h.createSession)
	r.Delete("/gallery/sessions", h.closeSession)
	r.Get("/gallery", h.getState)
	r.Put("/gallery/query", h.applyQuery)
	r.Post("/gallery/more", h.loadMore)
}

type galleryQueryRequest struct {
	Category  string   `json:"category"`
	Style     string   `json:"style"`
	WoodType  string   `json:"woodType"`
	MinPrice  *float64 `json:"minPrice"`
	MaxPrice  *float64 `json:"maxPrice"`
	Featured  bool     `json:"featured"`
	Available bool     `json:"available"`
	Tags      []string `json:"tags"`
	Search    string   `json:"q"`
	Sort      string   `json:"sort"`
}

func (q galleryQueryRequest) toIntent() (gallery.Intent, error) {
	var intent gallery.Intent
	if raw := strings.ToLower(strings.TrimSpace(q.Category)); raw != "" {
		category := domain.Category(raw)
		intent.Filter.Category = &category
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Style)); raw != "" {
		style := domain.Style(raw)
		intent.Filter.Style = &style
	}
	if raw := strings.ToLower(strings.TrimSpace(q.WoodType)); raw != "" {
		wood := domain.WoodType(raw)
		intent.Filter.WoodType = &wood
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		rng := domain.PriceRange{Max: math.MaxFloat64}
		if q.MinPrice != nil {
			rng.Min = *q.MinPrice
		}
		if q.MaxPrice != nil {
			rng.Max = *q.MaxPrice
		}
		intent.Filter.PriceRange = &rng
	}
	intent.Filter.FeaturedOnly = q.Featured
	intent.Filter.AvailableOnly = q.Available
	intent.Filter.Tags = q.Tags

	sort, err := domain.ParseSortKey(q.Sort)
	if err != nil {
		return gallery.Intent{}, err
	}
	intent.Sort = sort
	intent.Search = strings.TrimSpace(q.Search)
	return intent, nil
}

type galleryFilterPayload struct {
	// Active is false when no constraint is set, so clients can hide their
	// clear filters control.
	Active    bool            `json:"active"`
	Category  domain.Category `json:"category,omitempty"`
	Style     domain.Style    `json:"style,omitempty"`
	WoodType  domain.WoodType `json:"woodType,omitempty"`
	MinPrice  *float64        `json:"minPrice,omitempty"`
	MaxPrice  *float64        `json:"maxPrice,omitempty"`
	Featured  bool            `json:"featured"`
	Available bool            `json:"available"`
	Tags      []string        `json:"tags,omitempty"`
}

type galleryStatePayload struct {
	SessionID string               `json:"sessionId,omitempty"`
	Filter    galleryFilterPayload `json:"filter"`
	Sort      domain.SortKey       `json:"sort"`
	Search    string               `json:"q,omitempty"`
	Page      int                  `json:"page"`
	Items     []projectPayload     `json:"items"`
	HasMore   bool                 `json:"hasMore"`
	Total     totalPayload         `json:"total"`
	Status    gallery.Status       `json:"status"`
	Seq       uint64               `json:"seq"`
	Error     string               `json:"error,omitempty"`
}

func newGalleryStatePayload(id string, state gallery.State, locale domain.Locale) galleryStatePayload {
	filter := galleryFilterPayload{
		Active:    !state.Filter.IsZero(),
		Featured:  state.Filter.FeaturedOnly,
		Available: state.Filter.AvailableOnly,
		Tags:      state.Filter.Tags,
	}
	if state.Filter.Category != nil {
		filter.Category = *state.Filter.Category
	}
	if state.Filter.Style != nil {
		filter.Style = *state.Filter.Style
	}
	if state.Filter.WoodType != nil {
		filter.WoodType = *state.Filter.WoodType
	}
	if rng := state.Filter.PriceRange; rng != nil {
		minPrice := rng.Min
		filter.MinPrice = &minPrice
		if rng.Max != math.MaxFloat64 {
			maxPrice := rng.Max
			filter.MaxPrice = &maxPrice
		}
	}
	return galleryStatePayload{
		SessionID: id,
		Filter:    filter,
		Sort:      state.Sort,
		Search:    state.Search,
		Page:      state.Page,
		Items:     newProjectPayloads(state.Items, locale),
		HasMore:   state.HasMore,
		Total:     totalPayload{Count: state.Total.Count, Exact: state.Total.Exact},
		Status:    state.Status,
		Seq:       state.Seq,
		Error:     state.Err,
	}
}

// createSession starts a session and loads its first page. The body is an
// optional initial query.
func (h *GalleryHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req galleryQueryRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errBodyRequired) {
			writeBadRequest(ctx, w, err.Error())
			return
		}
	}
	intent, err := req.toIntent()
	if err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}

	id, ctl, err := h.sessions.Create()
	if err != nil {
		writeServiceError(ctx, w, err, "gallery session")
		return
	}
	state, err := ctl.Apply(ctx, intent)
	if err != nil {
		h.sessions.Delete(id)
		h.writeGalleryError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(galleryHeader, id)
	httpx.WriteJSON(w, http.StatusCreated, newGalleryStatePayload(id, state, requestctx.Locale(ctx)))
}

func (h *GalleryHandlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if id := h.sessionID(r); id != "" {
		h.sessions.Delete(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *GalleryHandlers) getState(w http.ResponseWriter, r *http.Request) {
	id, ctl, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newGalleryStatePayload(id, ctl.Snapshot(), requestctx.Locale(r.Context())))
}

func (h *GalleryHandlers) applyQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ctl, ok := h.session(w, r)
	if !ok {
		return
	}

	var req galleryQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}
	intent, err := req.toIntent()
	if err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}

	state, err := ctl.Apply(ctx, intent)
	if err != nil {
		h.writeGalleryError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newGalleryStatePayload(id, state, requestctx.Locale(ctx)))
}

func (h *GalleryHandlers) loadMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ctl, ok := h.session(w, r)
	if !ok {
		return
	}

	loaded, err := ctl.LoadMore(ctx)
	if err != nil {
		h.writeGalleryError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"loaded": loaded,
		"state":  newGalleryStatePayload(id, ctl.Snapshot(), requestctx.Locale(ctx)),
	})
}

func (h *GalleryHandlers) session(w http.ResponseWriter, r *http.Request) (string, *gallery.Controller, bool) {
	id := h.sessionID(r)
	ctl, ok := h.sessions.Get(id)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError(httpx.CodeNotFound, "gallery session not found or expired", http.StatusNotFound))
		return "", nil, false
	}
	return id, ctl, true
}

func (h *GalleryHandlers) sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(galleryHeader)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (h *GalleryHandlers) writeGalleryError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, gallery.ErrStale):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeConflict, "superseded by a newer gallery query", http.StatusConflict))
	case errors.Is(err, gallery.ErrClosed):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeNotFound, "gallery session not found or expired", http.StatusNotFound))
	default:
		writeServiceError(ctx, w, err, "projects")
	}
}
