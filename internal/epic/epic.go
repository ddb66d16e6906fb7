// Package epic locates EPIC numbers (voter identity numbers, shape
// LLLDDDDDDD) in extracted document text.
package epic

import (
	"regexp"
	"strings"
)

const core = `[A-Z]{3}[0-9]{7}`

// Recognition rules in priority order: a label-anchored match near
// "EPIC No" / "Identity Card" wins over a bare occurrence elsewhere.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:EPIC\s*No\.?|Identity\s*Card)\s*.*?\b(` + core + `)\b`),
	regexp.MustCompile(`\b(` + core + `)\b`),
}

var reCore = regexp.MustCompile(core)

// FindInText returns the first EPIC number recognized in text, or "".
// Raw-text rules run first; if both miss, the bare shape is retried against
// the normalized text (label context does not survive separator stripping).
func FindInText(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
		}
	}
	if m := reCore.FindString(Normalize(text)); m != "" {
		return m
	}
	return ""
}

// IsValid reports whether s is a well-formed EPIC number.
func IsValid(s string) bool {
	return len(s) == 10 && reCore.FindString(s) == s
}
