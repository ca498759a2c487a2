package moderation

import "strings"

// Category names match the wire format used by hosted moderation APIs.
type Category string

const (
	CategoryHate       Category = "hate"
	CategoryHarassment Category = "harassment"
	CategorySelfHarm   Category = "selfHarm"
	CategorySexual     Category = "sexual"
	CategoryViolence   Category = "violence"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	CategoryHate,
	CategoryHarassment,
	CategorySelfHarm,
	CategorySexual,
	CategoryViolence,
}

// matchSeverity is the score assigned on a term match. Substring
// matching gives no confidence gradient, so the score is binary.
const matchSeverity = 0.9

// Result is the verdict for one piece of text. Every category is
// present in Scores, zero when it did not trigger.
type Result struct {
	IsSafe bool                 `json:"isSafe"`
	Scores map[Category]float64 `json:"categories"`
}

// DefaultTerms is the default banned-term table. The substring
// heuristic is a placeholder for a hosted moderation API and is known
// to over-match (e.g. "kill" inside "killer app"); both the table and
// the matching strategy are injectable for that reason.
func DefaultTerms() map[Category][]string {
	return map[Category][]string{
		CategoryHate:       {"hate", "racist", "bigot"},
		CategoryHarassment: {"harass", "bully", "threat"},
		CategorySelfHarm:   {"suicide", "self-harm", "kill myself"},
		CategorySexual:     {"explicit", "porn", "xxx"},
		CategoryViolence:   {"kill", "attack", "bomb"},
	}
}

// Moderator scans text against per-category banned-term lists. It is
// pure: no I/O and no failure mode.
type Moderator struct {
	terms map[Category][]string
}

// New creates a moderator with the given term table. A nil table means
// DefaultTerms.
func New(terms map[Category][]string) *Moderator {
	if terms == nil {
		terms = DefaultTerms()
	}
	return &Moderator{terms: terms}
}

// Check scores the text. Categories are independent; any match marks
// the text unsafe.
func (m *Moderator) Check(text string) Result {
	lower := strings.ToLower(text)

	result := Result{
		IsSafe: true,
		Scores: make(map[Category]float64, len(Categories)),
	}
	for _, category := range Categories {
		result.Scores[category] = 0
	}

	for category, terms := range m.terms {
		for _, term := range terms {
			if strings.Contains(lower, term) {
				result.Scores[category] = matchSeverity
				result.IsSafe = false
				break
			}
		}
	}

	return result
}
