// Package normalize holds the canonical text normalization shared by every
// component that stores or looks up product strings.
//
// Any string persisted to the correct-matches or filtered-entries files must
// be compared through Text, otherwise an override written by the correction
// tool can silently stop matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// emphasis are markdown markers commonly wrapped around product mentions.
const emphasis = "*_`~"

// Text prepares text for storage and comparison:
//   - NFC composition (so "é" typed two ways compares equal)
//   - trims leading/trailing whitespace and markdown emphasis markers
//   - converts to lowercase
//   - collapses any run of whitespace into one space
func Text(text string) string {
	return strings.ToLower(Collapse(text))
}

// Collapse is Text without the lowercasing. Offsets found in Collapse(s)
// are valid in Text(s) for ASCII input.
func Collapse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = strings.Trim(text, emphasis+" \t")

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Equal reports whether a and b are the same after normalization.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}

// Format canonicalizes a razor/blade format name for comparison ("half de" -> "HALF DE").
func Format(format string) string {
	return strings.ToUpper(Text(format))
}
