package i18n

import (
	"net/url"
	"sort"

	"github.com/woodcraft-atelier/api/internal/domain"
)

// Route names the pages whose path differs between locales.
type Route string

const (
	RouteHome     Route = "/"
	RouteProjects Route = "/projects"
	RouteProject  Route = "/projects/[id]"
	RouteAbout    Route = "/about"
	RouteContact  Route = "/contact"
)

var pathnames = map[Route]map[domain.Locale]string{
	RouteHome: {
		domain.LocaleEN: "/",
		domain.LocaleAR: "/",
		domain.LocaleFR: "/",
		domain.LocaleDZ: "/",
	},
	RouteProjects: {
		domain.LocaleEN: "/projects",
		domain.LocaleAR: "/المشاريع",
		domain.LocaleFR: "/projets",
		domain.LocaleDZ: "/projets",
	},
	RouteProject: {
		domain.LocaleEN: "/projects/[id]",
		domain.LocaleAR: "/المشاريع/[id]",
		domain.LocaleFR: "/projets/[id]",
		domain.LocaleDZ: "/projets/[id]",
	},
	RouteAbout: {
		domain.LocaleEN: "/about",
		domain.LocaleAR: "/من-نحن",
		domain.LocaleFR: "/a-propos",
		domain.LocaleDZ: "/a-propos",
	},
	RouteContact: {
		domain.LocaleEN: "/contact",
		domain.LocaleAR: "/اتصل-بنا",
		domain.LocaleFR: "/contact",
		domain.LocaleDZ: "/contact",
	},
}

// Pathname returns the localized path of route, prefixed with the locale.
// Unknown routes are returned unchanged under the prefix.
func Pathname(route Route, locale domain.Locale) string {
	if _, ok := domain.ParseLocale(string(locale)); !ok {
		locale = domain.DefaultLocale
	}
	path := string(route)
	if byLocale, ok := pathnames[route]; ok {
		path = byLocale[locale]
	}
	if path == "/" {
		return "/" + string(locale)
	}
	return "/" + string(locale) + path
}

// ProjectPathname fills the [id] placeholder of the project detail route.
func ProjectPathname(id string, locale domain.Locale) string {
	base := Pathname(RouteProject, locale)
	return base[:len(base)-len("[id]")] + url.PathEscape(id)
}

// LocaleInfo describes one supported locale for the language switcher.
type LocaleInfo struct {
	Code      domain.Locale     `json:"code"`
	Direction string            `json:"dir"`
	Default   bool              `json:"default"`
	Pathnames map[string]string `json:"pathnames"`
}

// Catalog lists every supported locale with its localized pathnames.
func Catalog() []LocaleInfo {
	routes := make([]Route, 0, len(pathnames))
	for route := range pathnames {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i] < routes[j] })

	out := make([]LocaleInfo, 0, len(domain.SupportedLocales))
	for _, locale := range domain.SupportedLocales {
		info := LocaleInfo{
			Code:      locale,
			Direction: "ltr",
			Default:   locale == domain.DefaultLocale,
			Pathnames: make(map[string]string, len(routes)),
		}
		if locale.RTL() {
			info.Direction = "rtl"
		}
		for _, route := range routes {
			info.Pathnames[string(route)] = Pathname(route, locale)
		}
		out = append(out, info)
	}
	return out
}
