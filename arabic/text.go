package arabic

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = runes.Remove(runes.Predicate(IsDiacritic))

// HasDiacritics reports whether s contains any diacritic.
func HasDiacritics(s string) bool {
	return strings.ContainsFunc(s, IsDiacritic)
}

// Strip removes every diacritic from s. Other valid text is unchanged;
// invalid UTF-8 bytes become U+FFFD.
func Strip(s string) string {
	if !HasDiacritics(s) {
		return s
	}
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeForms folds Arabic presentation forms (ligatures and
// positional glyphs) to base letters with NFKC. Only runs of presentation
// forms are normalized; the rest of s is copied as is.
func NormalizeForms(s string) string {
	if !strings.ContainsFunc(s, IsPresentationForm) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		inForm := size > 1 && IsPresentationForm(r)
		switch {
		case inForm && start < 0:
			start = i
		case !inForm && start >= 0:
			b.WriteString(norm.NFKC.String(s[start:i]))
			start = -1
		}
		if !inForm {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	if start >= 0 {
		b.WriteString(norm.NFKC.String(s[start:]))
	}
	return b.String()
}

// Coverage returns the share of Arabic letters in s that carry at least
// one diacritic, between 0 and 1. Text without letters has coverage 0.
func Coverage(s string) float64 {
	letters, marked := 0, 0
	prevLetter := false
	for _, r := range s {
		switch {
		case IsLetter(r):
			letters++
			prevLetter = true
		case IsDiacritic(r):
			if prevLetter {
				marked++
			}
			prevLetter = false
		default:
			prevLetter = false
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(marked) / float64(letters)
}

// CountLetters returns the number of Arabic letters in s.
func CountLetters(s string) int {
	n := 0
	for _, r := range s {
		if IsLetter(r) {
			n++
		}
	}
	return n
}
