package scoring

import "strings"

// Normalize folds case and collapses all whitespace runs (spaces, tabs,
// line breaks) into single spaces, trimming the ends. Used both for short
// answer grading and for code-output comparison, so "  Krung  Thep \n"
// and "krung thep" compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Matches reports whether two strings are equal under Normalize.
func Matches(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
