// Package i18n negotiates the active locale of a request and maps the
// site's routes to their localized pathnames.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
)

const (
	// CookieName is the cookie the web front end writes when a visitor picks a language.
	CookieName = "NEXT_LOCALE"
	// QueryParam overrides the cookie for a single request.
	QueryParam = "hl"
)

// Darja has no CLDR tag of its own; ar-DZ is what browsers send for it.
var darja = language.MustParse("ar-DZ")

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Arabic,
	language.French,
	darja,
})

var tagLocales = []domain.Locale{domain.LocaleEN, domain.LocaleAR, domain.LocaleFR, domain.LocaleDZ}

// MatchAcceptLanguage resolves an Accept-Language header to a supported locale.
func MatchAcceptLanguage(header string) domain.Locale {
	header = strings.TrimSpace(header)
	if header == "" {
		return domain.DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return domain.DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return domain.DefaultLocale
	}
	return tagLocales[index]
}

// Resolve picks the locale for r: an explicit path prefix, then the hl
// query parameter, then the NEXT_LOCALE cookie, then Accept-Language.
func Resolve(r *http.Request, pathLocale string) domain.Locale {
	if locale, ok := domain.ParseLocale(pathLocale); ok {
		return locale
	}
	if r == nil {
		return domain.DefaultLocale
	}
	if locale, ok := domain.ParseLocale(r.URL.Query().Get(QueryParam)); ok {
		return locale
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if locale, ok := domain.ParseLocale(cookie.Value); ok {
			return locale
		}
	}
	return MatchAcceptLanguage(r.Header.Get("Accept-Language"))
}

// Middleware stores the negotiated locale on the request context and
// advertises it through Content-Language.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := Resolve(r, leadingSegment(r.URL.Path))
		w.Header().Set("Content-Language", string(locale))
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
	})
}

func leadingSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(path, "/")
	return segment
}
