// Package heuristic is the rule-based diacritizer used when no pretrained
// model is available. It never fails: every input, including invalid
// UTF-8, yields an output that differs from the input only by inserted
// diacritics.
package heuristic

import (
	"strings"
	"unicode/utf8"

	"github.com/kbukum/tashkeel/arabic"
)

// Diacritize adds short-vowel marks to the undiacritized Arabic words in
// text. Everything that is not an Arabic word is copied byte for byte.
func Diacritize(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text) + len(text)/2)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError || !arabic.IsArabicWordRune(r) {
			b.WriteString(text[i : i+size])
			i += size
			continue
		}
		end := wordEnd(text, i)
		writeWord(&b, text[i:end])
		i = end
	}
	return b.String()
}

func wordEnd(text string, start int) int {
	i := start
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError || !arabic.IsArabicWordRune(r) {
			break
		}
		i += size
	}
	return i
}

// mark is what gets written after a letter.
type mark struct {
	shadda bool
	vowel  rune
}

func (m mark) empty() bool { return !m.shadda && m.vowel == 0 }

func writeWord(b *strings.Builder, word string) {
	if arabic.HasDiacritics(word) {
		b.WriteString(word)
		return
	}
	letters := []rune(word)
	marks := markWord(letters)
	for i, r := range letters {
		b.WriteRune(r)
		if marks[i].shadda {
			b.WriteRune(arabic.Shadda)
		}
		if marks[i].vowel != 0 {
			b.WriteRune(marks[i].vowel)
		}
	}
}

// markWord applies the rule tables to a bare word.
func markWord(letters []rune) []mark {
	marks := make([]mark, len(letters))
	stem := applyArticle(letters, marks)

	if stem < len(letters) {
		if v, ok := hamzaSeatVowel[letters[stem]]; ok {
			marks[stem].vowel = v
		}
	}

	for i := stem; i < len(letters)-1; i++ {
		if !markable(letters[i]) || marks[i].vowel != 0 || longVowel(letters, marks, i) {
			continue
		}
		if v, ok := vowelBefore[letters[i+1]]; ok {
			marks[i].vowel = v
		}
	}

	first, last := -1, -1
	for i := stem; i < len(letters); i++ {
		if markable(letters[i]) && !longVowel(letters, marks, i) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first >= 0 && marks[first].vowel == 0 {
		marks[first].vowel = arabic.Fatha
	}
	if last >= 0 && marks[last].vowel == 0 {
		marks[last].vowel = arabic.Fatha
	}
	return marks
}

// applyArticle marks a leading definite article, optionally preceded by
// the conjunction wa or fa, and returns the index of the first stem letter.
// The article is only recognized when at least two letters follow it.
func applyArticle(letters []rune, marks []mark) int {
	start := 0
	if len(letters) >= 5 && conjunctions[letters[0]] && isArticle(letters[1:]) {
		marks[0].vowel = arabic.Fatha
		start = 1
	} else if len(letters) < 4 || !isArticle(letters) {
		return 0
	}

	lam, stem := start+1, start+2
	if arabic.IsSunLetter(letters[stem]) {
		marks[stem].shadda = true
	} else {
		marks[lam].vowel = arabic.Sukun
	}
	return stem
}

func isArticle(letters []rune) bool {
	return len(letters) >= 2 && letters[0] == arabic.Alef && letters[1] == arabic.Lam
}

// longVowel reports whether the letter at i lengthens the vowel of the
// letter before it: waw after damma, yeh after kasra.
func longVowel(letters []rune, marks []mark, i int) bool {
	if i == 0 {
		return false
	}
	prev := marks[i-1].vowel
	switch letters[i] {
	case arabic.Waw:
		return prev == arabic.Damma
	case arabic.Yeh:
		return prev == arabic.Kasra
	}
	return false
}

func markable(r rune) bool {
	return arabic.IsLetter(r) && !unmarked[r]
}
