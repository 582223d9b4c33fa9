// Package locales defines the supported output locale set and tag
// normalization for episode linking and personality state.
package locales

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Supported is the fixed set of output locales an episode artifact is
// linked against after successful synthesis.
var Supported = []string{"en", "de", "fr", "es"}

var supportedSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Supported))
	for _, locale := range Supported {
		set[locale] = struct{}{}
	}
	return set
}()

// IsSupported reports whether a normalized locale is in the supported set.
func IsSupported(locale string) bool {
	_, ok := supportedSet[locale]
	return ok
}

// Normalize parses a BCP 47 tag (or bare language code) and returns the
// canonical base language string used as the locale key.
func Normalize(tag string) (string, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "", fmt.Errorf("locale tag is empty")
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", trimmed, err)
	}
	base, _ := parsed.Base()
	return base.String(), nil
}

// NormalizeSupported normalizes a tag and verifies membership in the
// supported set.
func NormalizeSupported(tag string) (string, error) {
	normalized, err := Normalize(tag)
	if err != nil {
		return "", err
	}
	if !IsSupported(normalized) {
		return "", fmt.Errorf("locale %q is not in the supported set %v", normalized, Supported)
	}
	return normalized, nil
}
