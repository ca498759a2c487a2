package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/pkg/config"
	apperrors "intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/logger"
)

type fakeKnowledgeRepo struct {
	entries []models.KnowledgeEntry
	err     error
	created []*models.KnowledgeEntry
}

func (f *fakeKnowledgeRepo) SearchContent(ctx context.Context, keywords []string, limit int) ([]models.KnowledgeEntry, error) {
	return f.entries, f.err
}

func (f *fakeKnowledgeRepo) List(ctx context.Context) ([]models.KnowledgeEntry, error) {
	return f.entries, f.err
}

func (f *fakeKnowledgeRepo) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, entry)
	return nil
}

func newKnowledgeService(repo *fakeKnowledgeRepo) *KnowledgeService {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return NewKnowledgeService(repo, nil, config.Get(), log)
}

func TestKnowledgeList(t *testing.T) {
	repo := &fakeKnowledgeRepo{entries: []models.KnowledgeEntry{
		{Title: "Refund policy", Category: "billing"},
	}}
	svc := newKnowledgeService(repo)

	entries, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Refund policy", entries[0].Title)
}

func TestKnowledgeListStoreError(t *testing.T) {
	svc := newKnowledgeService(&fakeKnowledgeRepo{err: errors.New("down")})

	_, err := svc.List(context.Background())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeStoreError, appErr.Code)
}

func TestKnowledgeAdd(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	svc := newKnowledgeService(repo)

	err := svc.Add(context.Background(), "Refund policy", "Refunds within 14 days.", "billing", []string{"refunds"})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "billing", repo.created[0].Category)
	assert.Equal(t, []string{"refunds"}, []string(repo.created[0].Tags))
}

func TestKnowledgeAddMissingFields(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	svc := newKnowledgeService(repo)

	for _, tc := range []struct{ title, content, category string }{
		{"", "content", "category"},
		{"title", "", "category"},
		{"title", "content", ""},
	} {
		err := svc.Add(context.Background(), tc.title, tc.content, tc.category, nil)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	}
	assert.Empty(t, repo.created)
}
