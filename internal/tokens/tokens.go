// Package tokens estimates token and word counts for chat messages.
//
// The estimates are good enough for context windowing and for the counters
// shown under messages. They are not billing-accurate.
package tokens

import (
	"unicode"
	"unicode/utf8"
)

// Estimate returns the estimated token count of text. ASCII text averages
// about four bytes per token; every other rune is counted as a token of its own.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	ascii, other := 0, 0
	for _, r := range text {
		if r < utf8.RuneSelf {
			ascii++
		} else {
			other++
		}
	}
	return (ascii+3)/4 + other
}

// EstimateAll sums Estimate over all texts
func EstimateAll(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += Estimate(text)
	}
	return total
}

// CountWords counts words the way a reader would. Runs of letters or digits
// form one word; each CJK ideograph, kana or hangul syllable is a word.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case isCJK(r):
			count++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' && inWord:
			if !inWord {
				count++
				inWord = true
			}
		default:
			inWord = false
		}
	}
	return count
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
