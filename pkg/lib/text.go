package lib

import "strings"

// NormalizeText trims surrounding whitespace. Nil-ish inputs become "".
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeKeyword trims and lower-cases free-form keyword text so that
// keyword counting and matching are case-insensitive.
func NormalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
