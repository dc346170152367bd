package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/i18n"
	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
	"github.com/woodcraft-atelier/api/internal/services"
)

const profileCacheControl = "public, max-age=300"

// ContentHandlers serves the maker profile and the locale catalog.
type ContentHandlers struct {
	profiles services.ProfileService
}

func NewContentHandlers(profiles services.ProfileService) *ContentHandlers {
	return &ContentHandlers{profiles: profiles}
}

func (h *ContentHandlers) Routes(r chi.Router) {
	r.Get("/profile", h.getProfile)
	r.Get("/locales", h.listLocales)
}

func (h *ContentHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.profiles.GetProfile(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "profile")
		return
	}
	w.Header().Set("Cache-Control", profileCacheControl)
	httpx.WriteJSON(w, http.StatusOK, newProfilePayload(profile))
}

type localesPayload struct {
	Current domain.Locale     `json:"current"`
	Default domain.Locale     `json:"default"`
	Locales []i18n.LocaleInfo `json:"locales"`
}

func (h *ContentHandlers) listLocales(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, localesPayload{
		Current: requestctx.Locale(r.Context()),
		Default: domain.DefaultLocale,
		Locales: i18n.Catalog(),
	})
}
