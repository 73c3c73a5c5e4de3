// Package prune shortens outbound text to fit platform message limits.
package prune

import (
	"strings"
	"unicode/utf16"
)

const (
	DefaultMarker = "…[truncated]"
	// DefaultMaxUnits is LINE's text message limit, counted in UTF-16 code
	// units: characters outside the BMP (most emoji) count as two.
	DefaultMaxUnits = 5000
	DefaultMaxLines = 40
)

type Config struct {
	MaxUnits int
	MaxLines int
	Marker   string
}

func Exceeds(s string, maxUnits, maxLines int) bool {
	return CountUnits(s) > maxUnits || CountLines(s) > maxLines
}

// CountUnits returns the length of s in UTF-16 code units.
func CountUnits(s string) int {
	n := 0
	for _, r := range s {
		n += unitLen(r)
	}
	return n
}

func CountLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// Text keeps the head of s within the unit and line budget and appends the
// marker when anything was cut. The result never exceeds MaxUnits.
func Text(s string, cfg Config) string {
	cfg = normalizeConfig(cfg)
	if !Exceeds(s, cfg.MaxUnits, cfg.MaxLines) {
		return s
	}
	budget := cfg.MaxUnits - CountUnits(cfg.Marker)
	if budget <= 0 {
		return unitPrefix(cfg.Marker, cfg.MaxUnits)
	}
	head := limitLinesPrefix(unitPrefix(s, budget), cfg.MaxLines)
	return strings.TrimRight(head, " \n") + cfg.Marker
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxUnits <= 0 {
		cfg.MaxUnits = DefaultMaxUnits
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	return cfg
}

func unitLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	// Invalid runes are sent as U+FFFD.
	return 1
}

// unitPrefix returns the longest prefix of s of at most maxUnits UTF-16
// code units, never splitting a character.
func unitPrefix(s string, maxUnits int) string {
	if maxUnits <= 0 || s == "" {
		return ""
	}
	used := 0
	for i, r := range s {
		n := unitLen(r)
		if used+n > maxUnits {
			return s[:i]
		}
		used += n
	}
	return s
}

func limitLinesPrefix(s string, maxLines int) string {
	if maxLines <= 0 || s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}
