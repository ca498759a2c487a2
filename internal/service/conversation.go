package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"intelligent-chatbot/backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoreError wraps a persistence failure. The chat pipeline degrades on
// it; the conversation CRUD endpoints surface it as a 5xx.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("conversation store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ConversationStore is the persistence surface used by the chat
// pipeline; ConversationService is its gorm implementation.
type ConversationStore interface {
	Create(ctx context.Context, userID string) (string, error)
	AddMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (string, error)
	Get(ctx context.Context, id string) (*models.Conversation, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Conversation, error)
	Delete(ctx context.Context, id string) error
}

// ConversationService implements conversation CRUD over gorm.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// Create starts a new conversation, optionally owned by a user, and
// returns its id.
func (s *ConversationService) Create(ctx context.Context, userID string) (string, error) {
	conversation := &models.Conversation{UserID: userID}
	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return "", &StoreError{Op: "create conversation", Err: err}
	}
	return conversation.ID, nil
}

// AddMessage appends an immutable message and bumps the conversation's
// updated_at timestamp.
func (s *ConversationService) AddMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (string, error) {
	message := &models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       datatypes.JSONMap(metadata),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return "", &StoreError{Op: "add message", Err: err}
	}
	return message.ID, nil
}

// Get returns a conversation with its messages ordered by creation
// time, or nil when it does not exist.
func (s *ConversationService) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		First(&conversation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get conversation", Err: err}
	}
	return &conversation, nil
}

// ListRecent returns conversations ordered by updated_at descending,
// filtered to a user when userID is non-empty.
func (s *ConversationService) ListRecent(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Order("updated_at DESC").
		Limit(limit)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var conversations []models.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		return nil, &StoreError{Op: "list conversations", Err: err}
	}
	return conversations, nil
}

// Delete removes a conversation; its messages go with it via the
// cascade constraint.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Conversation{}, "id = ?", id)
	if result.Error != nil {
		return &StoreError{Op: "delete conversation", Err: result.Error}
	}
	return nil
}
