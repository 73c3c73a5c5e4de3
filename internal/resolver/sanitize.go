package resolver

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength caps a sanitized display name, in runes.
const MaxNameLength = 80

const illegalPathChars = `\/:*?"<>|`

// Sanitize makes a display name safe for use inside a folder name: it drops
// characters that are illegal in file paths and control characters, collapses
// whitespace runs into single spaces, and truncates to MaxNameLength runes.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalPathChars, r) {
			return -1
		}
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if utf8.RuneCountInString(cleaned) > MaxNameLength {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:MaxNameLength]))
	}
	return cleaned
}

// lastN returns the final n characters of id, or id itself when shorter.
func lastN(id string, n int) string {
	runes := []rune(id)
	if len(runes) <= n {
		return id
	}
	return string(runes[len(runes)-n:])
}
