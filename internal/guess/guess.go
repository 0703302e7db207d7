// Package guess implements text normalization and the similarity score
// used to detect close guesses in chat.
package guess

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and lower-cases the text using
// full Unicode case folding, so multi-byte words compare correctly.
func Normalize(text string) string {
	return cases.Fold().String(strings.TrimSpace(text))
}

// Matches reports whether the guess is an exact match of the word after
// normalization.
func Matches(word, guess string) bool {
	return Normalize(word) == Normalize(guess)
}

// Similarity scores how close a guess is to the word as a percentage in
// [0, 100]. It counts characters matched by repeatedly taking the longest
// common substring and recursing on the unmatched text to its left and
// right in both inputs. This deliberately mirrors the similarity routine
// the close-guess threshold was tuned against; do not swap it for an
// edit-distance metric.
func Similarity(word, guess string) float64 {
	a := []rune(Normalize(word))
	b := []rune(Normalize(guess))

	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	matched := commonChars(a, b)

	return float64(2*matched) / float64(len(a)+len(b)) * 100
}

// commonChars returns the number of characters covered by the longest
// common substring of a and b plus, recursively, those of the leftover
// segments on either side of it.
func commonChars(a, b []rune) int {
	var posA, posB, max int

	for i := range a {
		for j := range b {
			length := 0
			for i+length < len(a) && j+length < len(b) && a[i+length] == b[j+length] {
				length++
			}

			if length > max {
				max, posA, posB = length, i, j
			}
		}
	}

	if max == 0 {
		return 0
	}

	sum := max

	if posA > 0 && posB > 0 {
		sum += commonChars(a[:posA], b[:posB])
	}

	if posA+max < len(a) && posB+max < len(b) {
		sum += commonChars(a[posA+max:], b[posB+max:])
	}

	return sum
}
