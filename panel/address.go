package panel

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback tokens used when a display name sanitizes to nothing.
const (
	FallbackControl = "name"
	FallbackPreset  = "preset"
)

// foldDiacritics decomposes to NFD, strips combining marks, recomposes.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeName turns a display name into an address segment: diacritics
// folded to base Latin, spaces to underscores, anything outside
// [A-Za-z0-9_-] stripped, lower-cased. An empty result yields fallback.
func SanitizeName(name, fallback string) string {
	folded, _, err := transform.String(foldDiacritics, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// NormalizeAddress guarantees a leading slash.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "/") {
		return "/" + address
	}
	return address
}

// ResolveAddress builds the outgoing address for a control interaction by
// injecting the sanitized display name between the configured base
// address and the widget's suffix. The raw address a widget emits always
// starts with the base ("/fx1" or "/fx1/x"); the suffix is whatever
// follows. A raw address that does not start with the base still yields a
// well-formed result with the name right after the base.
func ResolveAddress(baseAddress, displayName, raw string) string {
	base := NormalizeAddress(baseAddress)
	name := SanitizeName(displayName, FallbackControl)
	if strings.HasPrefix(raw, base) {
		return base + "/" + name + strings.TrimPrefix(raw, base)
	}
	rest := raw
	if rest != "" && !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return base + "/" + name + rest
}

// BoolValue maps on/off to the 1.0/0.0 convention of the wire protocol.
func BoolValue(on bool) float32 {
	if on {
		return 1
	}
	return 0
}
