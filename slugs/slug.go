package slugs

import (
	"strings"

	slug "github.com/goliatone/go-slug"
)

// Normalizer exposes the slug normalizer interface.
type Normalizer = slug.Normalizer

// DefaultNormalizer returns the default slug normalizer.
func DefaultNormalizer() Normalizer {
	return slug.Default()
}

// Generate derives a URL-safe path segment from a display name. Cyrillic
// input is transliterated before the standard parameterize pass (lowercase,
// punctuation and whitespace collapsed to hyphens, hyphens trimmed).
func Generate(name string) string {
	return Normalize(Transliterate(name))
}

// Normalize applies the parameterize rules to an already-authored slug.
func Normalize(value string) string {
	normalized, err := slug.Normalize(value)
	if err == nil && normalized != "" {
		return normalized
	}
	return parameterize(value)
}

// IsValid reports whether the value already satisfies the slug rules.
func IsValid(value string) bool {
	return slug.IsValid(value)
}

// ForPage resolves the slug to persist for a page: regenerate from the name
// when auto derivation is on or no slug was authored, otherwise normalize
// the authored value.
func ForPage(name, current string, auto bool) string {
	if auto || strings.TrimSpace(current) == "" {
		return Generate(name)
	}
	return Normalize(Transliterate(current))
}

// parameterize is the fallback used when the normalizer rejects the input
// outright (for example a value with no representable runes at all).
func parameterize(value string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
