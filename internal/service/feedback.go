package service

import (
	"context"

	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/pkg/errors"

	"gorm.io/gorm"
)

// FeedbackService stores user ratings of the assistant.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// Record stores one feedback entry. Rating is required.
func (s *FeedbackService) Record(ctx context.Context, rating int, comment string) error {
	if rating == 0 {
		return errors.NewValidationError("Rating is required")
	}

	feedback := &models.Feedback{
		Rating:  rating,
		Comment: comment,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return errors.NewStoreError("Failed to store feedback")
	}
	return nil
}
