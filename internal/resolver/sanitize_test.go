package resolver

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: `a\b/c:d*e?f"g<h>i|j`, want: "abcdefghij"},
		{in: "  Family   Trip\t2024 \n", want: "Family Trip 2024"},
		{in: "Bad\x00Name\x07", want: "BadName"},
		{in: "旅行 / 写真", want: "旅行 写真"},
		{in: `\/:*?"<>|`, want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Sanitize(tc.in), "input %q", tc.in)
	}
}

func TestSanitize_RemovesEveryIllegalCharacter(t *testing.T) {
	got := Sanitize(`x` + illegalPathChars + `y` + strings.Repeat(`|`, 10))
	for _, r := range illegalPathChars {
		assert.NotContains(t, got, string(r))
	}
	assert.Equal(t, "xy", got)
}

func TestSanitize_CapsLength(t *testing.T) {
	got := Sanitize(strings.Repeat("あ", 200))
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(got))

	got = Sanitize(strings.Repeat("a", 79) + " b")
	assert.Equal(t, strings.Repeat("a", 79), got, "trailing space left by truncation is trimmed")
}

func TestLastN(t *testing.T) {
	assert.Equal(t, "abcdef", lastN("C123abcdef", 6))
	assert.Equal(t, "abc", lastN("abc", 6))
	assert.Equal(t, "", lastN("", 6))
}
