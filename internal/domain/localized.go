package domain

import "strings"

// Locale identifies one of the languages the site is published in.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleAR Locale = "ar"
	LocaleFR Locale = "fr"
	// LocaleDZ is Algerian Arabic (Darja).
	LocaleDZ Locale = "dz"

	// DefaultLocale is used whenever a requested locale has no content.
	DefaultLocale = LocaleEN
)

// SupportedLocales lists every locale in display order.
var SupportedLocales = []Locale{LocaleEN, LocaleAR, LocaleFR, LocaleDZ}

// ParseLocale normalises the supplied tag and reports whether it is supported.
func ParseLocale(value string) (Locale, bool) {
	candidate := Locale(strings.ToLower(strings.TrimSpace(value)))
	for _, locale := range SupportedLocales {
		if locale == candidate {
			return locale, true
		}
	}
	return "", false
}

// RTL reports whether the locale is written right to left.
func (l Locale) RTL() bool {
	return l == LocaleAR || l == LocaleDZ
}

// LocalizedContent holds the same text in every supported locale.
type LocalizedContent struct {
	EN string `json:"en"`
	AR string `json:"ar"`
	FR string `json:"fr"`
	DZ string `json:"dz"`
}

// Get returns the text for locale, falling back to English when it is blank or unsupported.
func (c LocalizedContent) Get(locale Locale) string {
	if value := strings.TrimSpace(c.raw(locale)); value != "" {
		return c.raw(locale)
	}
	return c.EN
}

func (c LocalizedContent) raw(locale Locale) string {
	switch locale {
	case LocaleEN:
		return c.EN
	case LocaleAR:
		return c.AR
	case LocaleFR:
		return c.FR
	case LocaleDZ:
		return c.DZ
	default:
		return ""
	}
}

// Missing lists the locales that carry no text.
func (c LocalizedContent) Missing() []Locale {
	var missing []Locale
	for _, locale := range SupportedLocales {
		if strings.TrimSpace(c.raw(locale)) == "" {
			missing = append(missing, locale)
		}
	}
	return missing
}

// Values returns the non-blank translations in locale order.
func (c LocalizedContent) Values() []string {
	values := make([]string, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		if value := strings.TrimSpace(c.raw(locale)); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// IsZero reports whether no locale has content.
func (c LocalizedContent) IsZero() bool {
	return len(c.Values()) == 0
}

// Map converts the content into a locale keyed map, as persisted in documents.
func (c LocalizedContent) Map() map[string]string {
	return map[string]string{
		string(LocaleEN): c.EN,
		string(LocaleAR): c.AR,
		string(LocaleFR): c.FR,
		string(LocaleDZ): c.DZ,
	}
}

// LocalizedContentFromMap is the inverse of Map; unknown keys are ignored.
func LocalizedContentFromMap(values map[string]string) LocalizedContent {
	return LocalizedContent{
		EN: values[string(LocaleEN)],
		AR: values[string(LocaleAR)],
		FR: values[string(LocaleFR)],
		DZ: values[string(LocaleDZ)],
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every locale.
func (c LocalizedContent) Trimmed() LocalizedContent {
	return LocalizedContent{
		EN: strings.TrimSpace(c.EN),
		AR: strings.TrimSpace(c.AR),
		FR: strings.TrimSpace(c.FR),
		DZ: strings.TrimSpace(c.DZ),
	}
}
