package arabic

// Diacritic code points.
const (
	Fathatan        rune = '\u064B'
	Dammatan        rune = '\u064C'
	Kasratan        rune = '\u064D'
	Fatha           rune = '\u064E'
	Damma           rune = '\u064F'
	Kasra           rune = '\u0650'
	Shadda          rune = '\u0651'
	Sukun           rune = '\u0652'
	SuperscriptAlef rune = '\u0670'
)

// Letters referenced by the diacritization rules.
const (
	Hamza          rune = '\u0621' // ء
	AlefMadda      rune = '\u0622' // آ
	AlefHamzaAbove rune = '\u0623' // أ
	WawHamza       rune = '\u0624' // ؤ
	AlefHamzaBelow rune = '\u0625' // إ
	YehHamza       rune = '\u0626' // ئ
	Alef           rune = '\u0627' // ا
	TehMarbuta     rune = '\u0629' // ة
	Tatweel        rune = '\u0640'
	Feh            rune = '\u0641' // ف
	Lam            rune = '\u0644' // ل
	Waw            rune = '\u0648' // و
	AlefMaksura    rune = '\u0649' // ى
	Yeh            rune = '\u064A' // ي
)

// Diacritics lists every mark removed by Strip, in code point order.
var Diacritics = []rune{
	Fathatan, Dammatan, Kasratan, Fatha, Damma, Kasra, Shadda, Sukun, SuperscriptAlef,
}

// sunLetters assimilate the lam of the definite article.
var sunLetters = map[rune]bool{
	'\u062A': true, // teh
	'\u062B': true, // theh
	'\u062F': true, // dal
	'\u0630': true, // thal
	'\u0631': true, // reh
	'\u0632': true, // zain
	'\u0633': true, // seen
	'\u0634': true, // sheen
	'\u0635': true, // sad
	'\u0636': true, // dad
	'\u0637': true, // tah
	'\u0638': true, // zah
	'\u0644': true, // lam
	'\u0646': true, // noon
}

// IsDiacritic reports whether r is one of Diacritics.
func IsDiacritic(r rune) bool {
	return (r >= Fathatan && r <= Sukun) || r == SuperscriptAlef
}

// IsLetter reports whether r is a base Arabic letter.
func IsLetter(r rune) bool {
	return r >= Hamza && r <= Yeh && r != Tatweel
}

// IsSunLetter reports whether r is a sun letter.
func IsSunLetter(r rune) bool {
	return sunLetters[r]
}

// IsArabicWordRune reports whether r can appear inside an Arabic word:
// a letter, a diacritic or the tatweel.
func IsArabicWordRune(r rune) bool {
	return IsLetter(r) || IsDiacritic(r) || r == Tatweel
}

// IsPresentationForm reports whether r is in the Arabic Presentation
// Forms-A or -B blocks.
func IsPresentationForm(r rune) bool {
	return (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF)
}
