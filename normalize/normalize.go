// Package normalize canonicalizes recovered text before storage or
// comparison. Every extraction path and every scoring signal runs its
// input through Clean, so downstream consumers see one canonical form
// regardless of whether the text came from a scanned image, a PDF text
// layer, word-processor paragraphs, or a raw upload.
package normalize

import "strings"

// allowedPunct is the fixed set of punctuation preserved by Clean.
// Anything outside letters, digits, whitespace, and this set is treated
// as transcription noise.
const allowedPunct = `.,!?;:()[]{}-"'`

// Clean collapses whitespace and strips symbols unlikely to be meaningful
// content. It is deterministic, total, and idempotent: runs of
// newline/carriage-return/tab/space characters become a single space,
// disallowed characters become spaces, and the result is trimmed.
// The output never contains newline or tab characters.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))

	// Disallowed runes become spaces first, so the whitespace collapse
	// below also absorbs them. Collapsing before stripping would leave
	// double spaces behind and break idempotence.
	space := false
	for _, r := range raw {
		if isSpace(r) || !allowed(r) {
			space = true
			continue
		}
		if space {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(allowedPunct, r)
}

// QualityScore reports the alphanumeric density of text as a percentage
// in [0,100]. Low values usually mean a noisy transcription.
func QualityScore(text string) float64 {
	if text == "" {
		return 0
	}

	alnum := 0
	total := 0
	for _, r := range text {
		total++
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			alnum++
		}
	}
	if total == 0 {
		return 0
	}

	score := float64(alnum) / float64(total) * 100
	if score > 100 {
		score = 100
	}
	return score
}
