// Package normalize cleans user-entered and upstream text before it is stored
// or used as a cache key.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonKeyRun     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Text trims, collapses internal whitespace, and composes Unicode (NFC) so
// visually identical titles compare equal.
// "  The   Hobbit\n" -> "The Hobbit".
func Text(s string) string {
	s = norm.NFC.String(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Key folds s into an ASCII lowercase key for lookups and caching.
// "Cien Años de Soledad" -> "cien anos de soledad".
func Key(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	s = nonKeyRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most n runes without splitting a character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// HTTPS upgrades a plain http:// URL to https://; other values pass through.
func HTTPS(url string) string {
	if rest, ok := strings.CutPrefix(url, "http://"); ok {
		return "https://" + rest
	}
	return url
}
