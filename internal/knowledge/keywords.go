package knowledge

import (
	"strings"
	"unicode"
)

// DefaultStopWords is the default stop-word table: articles, auxiliary
// verbs, prepositions and question words carrying no search value.
// Loaded as data so deployments can tune it without code changes.
func DefaultStopWords() []string {
	return []string{
		"a", "an", "the",
		"is", "are", "was", "were", "be", "been", "being", "am",
		"in", "on", "at", "to", "for", "with", "by", "about", "like",
		"through", "over", "before", "after", "between", "under", "above", "of",
		"and", "or",
		"what", "when", "where", "who", "how", "why", "which",
		"do", "does", "did", "have", "has", "had",
		"can", "could", "would", "should", "will", "shall", "may", "might",
	}
}

// Extractor turns free-text queries into deduplicated search terms.
type Extractor struct {
	stopWords map[string]struct{}
}

// NewExtractor creates an extractor with the given stop-word table.
// A nil table means DefaultStopWords.
func NewExtractor(stopWords []string) *Extractor {
	if stopWords == nil {
		stopWords = DefaultStopWords()
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{stopWords: set}
}

// Keywords extracts the unique lowercase alphanumeric tokens of length
// greater than two that are not stop-words. An empty query yields an
// empty result.
func (e *Extractor) Keywords(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, query)

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := e.stopWords[word]; stop {
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
