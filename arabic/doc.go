// Package arabic holds the Arabic rune tables shared by the
// diacritization backends, and small text utilities built on them.
//
// Diacritics (harakat) are the eight marks U+064B..U+0652 plus the
// superscript alef U+0670. Letters are the base block U+0621..U+064A
// without the tatweel U+0640.
package arabic
