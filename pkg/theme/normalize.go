package theme

import (
	"regexp"
	"strings"
	"unicode"
)

const quoteChars = "\"'`“”‘’«»"

var (
	uuidRe    = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	numericRe = regexp.MustCompile(`#?\b\d{2,}\b`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

// filler prefixes stripped from oracle labels, longest variants first
var fillerPrefixes = []string{
	"problems related to ", "problem related to ", "issues related to ", "issues with ", "issue with ",
	"problems with ", "problem with ", "lack of ", "the ", "an ", "a ",
}

// Normalize turns a raw issue phrase into a short label.
// A keyword hit always wins, otherwise the first 2-5 words are kept.
// Returns false if nothing usable remains.
func Normalize(raw string) (string, bool) {
	s := stripIDs(strings.Trim(strings.TrimSpace(raw), quoteChars))
	if len(s) < 3 {
		return "", false
	}

	if t := Classify(s); t != Unclassified {
		return t, true
	}

	words := strings.Fields(s)
	if len(words) < 2 {
		return "", false
	}
	if len(words) > 5 {
		words = words[:5]
	}

	label := strings.Join(words, " ")
	if strings.HasSuffix(label, ".") || len(label) > 50 {
		label = strings.TrimRight(strings.Join(words[:2], " "), ".")
	}
	if strings.TrimSpace(label) == "" {
		return "", false
	}
	return label, true
}

// CleanLabel post-processes an oracle-proposed label: quotes, ids and filler
// prefixes are removed, the result is capped at five words and title-cased.
// All-caps acronyms are kept as is.
func CleanLabel(raw string) string {
	s := stripIDs(strings.Trim(strings.TrimSpace(raw), quoteChars))
	s = strings.TrimRight(s, ".!?:;, ")

	for stripped := true; stripped; {
		stripped = false
		for _, p := range fillerPrefixes {
			if len(s) > len(p) && strings.EqualFold(s[:len(p)], p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
				break
			}
		}
	}

	words := strings.Fields(s)
	if len(words) > 5 {
		words = words[:5]
	}
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// Canonicalize maps a cleaned label to the nearest canonical theme,
// labels without a keyword hit are returned unchanged
func Canonicalize(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || IsCanonical(label) {
		return label
	}
	if t := Classify(label); t != Unclassified {
		return t
	}
	return label
}

// WordCount returns the number of whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func stripIDs(s string) string {
	s = uuidRe.ReplaceAllString(s, " ")
	s = numericRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

func titleWord(w string) string {
	if isAcronym(w) {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters > 1
}
