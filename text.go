package pdflayout

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// modeInt returns the most frequent value. Ties go to the value seen first.
func modeInt(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}

	counts := make(map[int]int, len(values))
	order := make([]int, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// normalizeText composes the text to NFC so decomposed glyph sequences
// (e.g. "й" emitted as и + combining breve) match the caption patterns.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

// firstRuneUpper reports whether the first rune of text is an upper-case letter.
func firstRuneUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}

// visibleRuneCount counts the non-space runes of text.
func visibleRuneCount(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// hasLetter reports whether text contains at least one letter.
func hasLetter(text string) bool {
	return strings.IndexFunc(text, unicode.IsLetter) >= 0
}

// hasDigit reports whether text contains at least one decimal digit.
func hasDigit(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}

// hasGreek reports whether text contains a Greek letter.
func hasGreek(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.Is(unicode.Greek, r) && unicode.IsLetter(r)
	}) >= 0
}
