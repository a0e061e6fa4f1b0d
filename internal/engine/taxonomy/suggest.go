package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Suggest returns up to limit values matching query, ignoring case and
// accents. Prefix matches come first; within each group the input order is
// kept. An empty query matches nothing.
func Suggest(values []string, query string, limit int) []string {
	q := Fold(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	var prefix, inner []string
	for _, v := range values {
		f := Fold(v)
		switch {
		case strings.HasPrefix(f, q):
			prefix = append(prefix, v)
		case strings.Contains(f, q):
			inner = append(inner, v)
		}
	}

	out := append(prefix, inner...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Resolve returns the value that folds to the same text as input, so that
// "kadikoy" resolves to "Kadıköy".
func Resolve(values []string, input string) (string, bool) {
	q := Fold(strings.TrimSpace(input))
	if q == "" {
		return "", false
	}
	for _, v := range values {
		if Fold(v) == q {
			return v, true
		}
	}
	return "", false
}

// dotless ı has no decomposition, so it is mapped by hand.
var turkishFolder = strings.NewReplacer("ı", "i")

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return turkishFolder.Replace(result)
}
