package tokenizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// nonWordRegex matches runs of characters that are neither letters, digits nor hyphens.
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}-]+`)

// nonAlphanumericRegex matches sequences of non-alphanumeric characters.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// courseCodeRegex matches strings shaped like a course code, e.g. "cosc-207" or "math111".
var courseCodeRegex = regexp.MustCompile(`^[a-z]{4}-?[0-9]+[a-z]?$`)

// codePartsRegex splits a course code into its letter prefix and number.
var codePartsRegex = regexp.MustCompile(`^([a-zA-Z]+)[^a-zA-Z0-9]*([0-9]+)`)

// Clean lowercases text, replaces every character that is not a letter, digit or
// hyphen with a space, drops hyphens that are not between two word characters and
// collapses whitespace. "Intro to C.S. (COSC-111)!" becomes "intro to c s cosc-111".
func Clean(text string) string {
	lowered := strings.ToLower(text)
	replaced := nonWordRegex.ReplaceAllString(lowered, " ")

	fields := strings.Fields(replaced)
	cleaned := make([]string, 0, len(fields))
	for _, field := range fields {
		if word := trimHyphens(field); word != "" {
			cleaned = append(cleaned, word)
		}
	}
	return strings.Join(cleaned, " ")
}

// trimHyphens removes leading, trailing and repeated hyphens from a word.
func trimHyphens(word string) string {
	parts := strings.Split(word, "-")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "-")
}

// Tokenize converts a string into a slice of lowercase alphanumeric tokens.
// Hyphens and punctuation both split tokens.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// NGrams joins every contiguous run of n tokens with a single space.
// For ["machine", "learning", "theory"] and n=2 it produces
// "machine learning" and "learning theory".
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return make([]string, 0) // Return empty slice instead of nil
	}

	ngrams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		ngrams = append(ngrams, strings.Join(tokens[i:i+n], " "))
	}
	return ngrams
}

// NormalizeCode lowercases a course code and strips everything that is not a
// letter or digit, so "COSC-111", "cosc 111" and "COSC111" compare equal.
func NormalizeCode(code string) string {
	return nonAlphanumericRegex.ReplaceAllString(strings.ToLower(code), "")
}

// LetterPrefix returns the leading run of ASCII letters of s, lower-cased.
func LetterPrefix(s string) string {
	end := 0
	for end < len(s) && isASCIILetter(s[end]) {
		end++
	}
	return strings.ToLower(s[:end])
}

// CodeNumber extracts the numeric part of a course code such as "COSC-111".
func CodeNumber(code string) (int, bool) {
	match := codePartsRegex.FindStringSubmatch(strings.TrimSpace(code))
	if match == nil {
		return 0, false
	}
	number, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	return number, true
}

// IsNumeric reports whether s is non-empty and made only of digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// LooksLikeCourseCode reports whether a lower-cased token is shaped like a course code.
func LooksLikeCourseCode(token string) bool {
	return courseCodeRegex.MatchString(token)
}

// ContainsWord reports whether term occurs in text with a non-alphanumeric
// character (or the text boundary) on both sides. Both arguments are expected
// to be lower-cased already.
func ContainsWord(text, term string) bool {
	if term == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if isBoundary(text, start-1) && isBoundary(text, end) {
			return true
		}
		offset = start + 1
	}
}

func isBoundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	c := text[pos]
	if c >= 0x80 {
		// Multi-byte runes are treated as word characters.
		return false
	}
	return !isASCIILetter(c) && !(c >= '0' && c <= '9')
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
