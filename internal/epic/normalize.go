package epic

import (
	"regexp"
	"strings"
)

var reSeparators = regexp.MustCompile(`[\s\-:_]+`)

// confusables maps glyphs that scanners commonly misread onto their canonical
// ASCII forms. The table is deliberately small and fixed; broader OCR error
// correction (e.g. ASCII "O" inside the digit run) is unimplemented.
var confusables = strings.NewReplacer(
	"О", "O", // Cyrillic capital O
	"Ｏ", "O", // fullwidth O
	"०", "0", // Devanagari zero
	"l", "I",
)

// Normalize canonicalizes text for loose identifier matching: separator
// characters are removed and confusable glyphs mapped to ASCII. Idempotent;
// empty input yields empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = reSeparators.ReplaceAllString(s, "")
	return confusables.Replace(s)
}
