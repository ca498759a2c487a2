package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSafeText(t *testing.T) {
	moderator := New(nil)

	result := moderator.Check("What is the weather like today?")

	assert.True(t, result.IsSafe)
	assert.Len(t, result.Scores, len(Categories))
	for _, category := range Categories {
		assert.Equal(t, 0.0, result.Scores[category], "category %s", category)
	}
}

func TestCheckFlagsViolence(t *testing.T) {
	moderator := New(nil)

	result := moderator.Check("I want to attack the server room")

	assert.False(t, result.IsSafe)
	assert.Equal(t, 0.9, result.Scores[CategoryViolence])
	assert.Equal(t, 0.0, result.Scores[CategoryHate])
}

func TestCheckCaseInsensitive(t *testing.T) {
	moderator := New(nil)

	result := moderator.Check("You RACIST!")

	assert.False(t, result.IsSafe)
	assert.Equal(t, 0.9, result.Scores[CategoryHate])
}

func TestCheckMultipleCategories(t *testing.T) {
	moderator := New(nil)

	result := moderator.Check("kill them and harass everyone")

	assert.False(t, result.IsSafe)
	assert.Equal(t, 0.9, result.Scores[CategoryViolence])
	assert.Equal(t, 0.9, result.Scores[CategoryHarassment])
}

func TestCheckSubstringMatching(t *testing.T) {
	moderator := New(nil)

	// The substring heuristic over-matches inside larger words.
	result := moderator.Check("this is a killer feature")

	assert.False(t, result.IsSafe)
	assert.Equal(t, 0.9, result.Scores[CategoryViolence])
}

func TestCheckCustomTerms(t *testing.T) {
	moderator := New(map[Category][]string{
		CategoryHate: {"forbidden"},
	})

	assert.False(t, moderator.Check("that word is forbidden here").IsSafe)
	// Default terms do not apply when a custom table is supplied.
	assert.True(t, moderator.Check("I will attack at dawn").IsSafe)
}

func TestCheckEmptyText(t *testing.T) {
	moderator := New(nil)

	result := moderator.Check("")

	assert.True(t, result.IsSafe)
	assert.Len(t, result.Scores, len(Categories))
}
