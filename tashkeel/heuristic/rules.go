package heuristic

import "github.com/kbukum/tashkeel/arabic"

// unmarked letters never carry a mark.
var unmarked = map[rune]bool{
	arabic.Alef:        true,
	arabic.AlefMadda:   true,
	arabic.AlefMaksura: true,
	arabic.Hamza:       true,
}

// vowelBefore gives the vowel a letter takes when followed by a long
// vowel letter or teh marbuta.
var vowelBefore = map[rune]rune{
	arabic.Alef:        arabic.Fatha,
	arabic.AlefMaksura: arabic.Fatha,
	arabic.TehMarbuta:  arabic.Fatha,
	arabic.Waw:         arabic.Damma,
	arabic.Yeh:         arabic.Kasra,
}

// hamzaSeatVowel is the vowel implied by a hamza seat at the start of a stem.
var hamzaSeatVowel = map[rune]rune{
	arabic.AlefHamzaAbove: arabic.Fatha,
	arabic.AlefHamzaBelow: arabic.Kasra,
}

// conjunctions are the one-letter prefixes recognized before the article.
var conjunctions = map[rune]bool{
	arabic.Waw: true,
	arabic.Feh: true,
}
