package service

import (
	"context"
	"encoding/json"

	"intelligent-chatbot/backend/internal/knowledge"
	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/pkg/config"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/shared/redis"
)

const knowledgeListCacheKey = "knowledge:list"

// KnowledgeService exposes the knowledge base for the admin endpoints,
// with a Redis cache in front of the listing. The cache is optional;
// without it every read hits the store.
type KnowledgeService struct {
	repo  knowledge.Repository
	cache *redis.Client
	cfg   *config.Config
	log   *logger.Logger
}

func NewKnowledgeService(repo knowledge.Repository, cache *redis.Client, cfg *config.Config, log *logger.Logger) *KnowledgeService {
	return &KnowledgeService{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// List returns all entries, newest first. Cache failures degrade to the
// store.
func (s *KnowledgeService) List(ctx context.Context) ([]models.KnowledgeEntry, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, knowledgeListCacheKey)
		if err != nil {
			s.log.Warn("knowledge cache read failed", "error", err.Error())
		} else if found {
			var entries []models.KnowledgeEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewStoreError("Failed to fetch knowledge entries")
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, knowledgeListCacheKey, payload, s.cfg.Cache.KnowledgeTTL); err != nil {
				s.log.Warn("knowledge cache write failed", "error", err.Error())
			}
		}
	}

	return entries, nil
}

// Add validates and stores a new entry, invalidating the listing cache.
func (s *KnowledgeService) Add(ctx context.Context, title, content, category string, tags []string) error {
	if title == "" || content == "" || category == "" {
		return errors.NewValidationError("Title, content, and category are required")
	}

	entry := &models.KnowledgeEntry{
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     tags,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return errors.NewStoreError("Failed to add knowledge entry")
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, knowledgeListCacheKey); err != nil {
			s.log.Warn("knowledge cache invalidation failed", "error", err.Error())
		}
	}

	return nil
}
