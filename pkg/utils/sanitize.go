package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[@#$%&*/:^{}<>?"]`)

// Sanitize strips characters that are unsafe in file and directory names.
func Sanitize(s string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(s, ""))
}

// Numbered builds a "01. Title" style name. Indices are zero-padded to two
// digits so directory listings sort in lesson order.
func Numbered(index int, title string) string {
	return fmt.Sprintf("%02d. %s", index, Sanitize(title))
}

// FormatDuration renders a duration in seconds as "12min 34s".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dmin %ds", seconds/60, seconds%60)
}

// Capitalize uppercases the first rune and lowercases the rest ("bearer" ->
// "Bearer"), matching the token type casing the API expects.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
