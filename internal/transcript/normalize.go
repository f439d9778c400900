// Package transcript normalizes recognized utterance text for matching.
package transcript

import (
	"strings"
	"time"
	"unicode"
)

// Transcript is one recognized utterance delivered by the speech input side.
type Transcript struct {
	Text       string
	Confidence float64
	CapturedAt time.Time
}

// Empty reports whether the transcript carries no usable speech.
func (t Transcript) Empty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// Normalize lowercases, strips sentence punctuation, and collapses whitespace.
//
// Recognizers emit capitalized, punctuated prose ("List all files, please.");
// phrase and target matching operate on the normalized form. Commas survive
// as standalone "," tokens because the target resolver treats them as clause
// boundaries ("in frontend tab, run npm start").
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '-' || r == '_' || r == '/' || r == '.':
			// keep word-internal characters such as app.py or node-16
			b.WriteRune(r)
		case r == ',' || r == ';':
			b.WriteString(" , ")
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, field := range fields {
		if field != "," {
			field = strings.Trim(field, ".'-")
			if field == "" {
				continue
			}
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}

// Words splits normalized text into match tokens, dropping clause separators.
func Words(normalized string) []string {
	fields := strings.Fields(normalized)
	out := fields[:0]
	for _, field := range fields {
		if field == "," {
			continue
		}
		out = append(out, field)
	}
	return out
}

// StripSeparators removes clause-separator tokens from normalized text.
func StripSeparators(normalized string) string {
	return strings.Join(Words(normalized), " ")
}
