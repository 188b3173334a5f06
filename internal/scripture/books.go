package scripture

import (
	"strings"
	"unicode"
)

// Words dropped while normalising a book name. "Gospel of John", "the book of
// Romans" and "St. Paul's letter to the Romans" should all land on the same key.
var fillerWords = map[string]bool{
	"the":       true,
	"a":         true,
	"an":        true,
	"book":      true,
	"of":        true,
	"gospel":    true,
	"according": true,
	"to":        true,
	"epistle":   true,
	"letter":    true,
	"st":        true,
	"saint":     true,
	"paul":      true,
	"pauls":     true,
}

var ordinalWords = map[string]string{
	"first":  "1",
	"1st":    "1",
	"i":      "1",
	"second": "2",
	"2nd":    "2",
	"ii":     "2",
	"third":  "3",
	"3rd":    "3",
	"iii":    "3",
}

// NormalizeBook folds a free-form book name into a lookup key: lower case,
// punctuation and filler words removed, ordinal words turned into digits and
// all whitespace collapsed away. "First Corinthians" and "1 Corinthians" both
// become "1corinthians".
func NormalizeBook(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '\'' || r == '’':
			return -1
		default:
			return ' '
		}
	}, name)

	var b strings.Builder
	for _, word := range strings.Fields(cleaned) {
		if fillerWords[word] {
			continue
		}
		if digit, ok := ordinalWords[word]; ok {
			word = digit
		}
		b.WriteString(word)
	}
	return b.String()
}

// LookupBook resolves a free-form name to its canonical book.
func LookupBook(name string) (Book, bool) {
	key := NormalizeBook(name)
	if key == "" {
		return Book{}, false
	}
	b, ok := Default().byKey[key]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// ChapterCount returns the number of chapters in the named book, or 0 if the
// book is unknown.
func ChapterCount(name string) int {
	b, ok := LookupBook(name)
	if !ok {
		return 0
	}
	return b.Chapters
}
