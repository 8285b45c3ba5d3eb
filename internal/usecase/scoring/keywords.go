package scoring

import (
	"strings"
	"unicode"
)

// stopWords are high-frequency tokens that carry no values signal.
var stopWords = map[string]struct{}{
	"that": {}, "with": {}, "have": {}, "this": {}, "will": {},
	"your": {}, "from": {}, "they": {}, "know": {}, "want": {},
	"been": {}, "good": {}, "much": {}, "some": {}, "time": {},
}

// ExtractKeywords tokenizes free text into a keyword set: lower-cased,
// punctuation stripped, tokens longer than three characters kept, stop words
// removed. Returned in first-occurrence order so callers stay deterministic.
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

// JaccardOverlap computes |a ∩ b| / |a ∪ b| over two keyword slices treated
// as sets. Empty input on either side scores zero.
func JaccardOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, k := range a {
		setA[k] = struct{}{}
	}
	union := make(map[string]struct{}, len(a)+len(b))
	for _, k := range a {
		union[k] = struct{}{}
	}

	overlap := 0
	for _, k := range b {
		if _, dup := union[k]; !dup {
			union[k] = struct{}{}
		}
	}
	seenB := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, dup := seenB[k]; dup {
			continue
		}
		seenB[k] = struct{}{}
		if _, ok := setA[k]; ok {
			overlap++
		}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(overlap) / float64(len(union))
}
