package knowledge

import (
	"context"
	"fmt"
	"strings"

	"intelligent-chatbot/backend/pkg/logger"
)

// maxMatches caps how many entries feed the knowledge blob.
const maxMatches = 3

// Lookup retrieves knowledge context for a chat query. Retrieval is
// best-effort: any store failure degrades to "no knowledge" so the chat
// pipeline never fails on this path.
type Lookup struct {
	repo      Repository
	extractor *Extractor
	log       *logger.Logger
}

func NewLookup(repo Repository, extractor *Extractor, log *logger.Logger) *Lookup {
	return &Lookup{
		repo:      repo,
		extractor: extractor,
		log:       log,
	}
}

// Search returns the formatted knowledge blob for the query, or ""
// when no keywords survive extraction, nothing matches, or the store
// is unavailable.
func (l *Lookup) Search(ctx context.Context, query string) string {
	keywords := l.extractor.Keywords(query)
	if len(keywords) == 0 {
		return ""
	}

	entries, err := l.repo.SearchContent(ctx, keywords, maxMatches)
	if err != nil {
		l.log.Warn("knowledge base query failed", "error", err.Error())
		return ""
	}
	if len(entries) == 0 {
		return ""
	}

	parts := make([]string, len(entries))
	for i, entry := range entries {
		parts[i] = fmt.Sprintf("KNOWLEDGE [%s]: %s\n%s", entry.Category, entry.Title, entry.Content)
	}
	return strings.Join(parts, "\n\n")
}
