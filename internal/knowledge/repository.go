package knowledge

import (
	"context"

	"intelligent-chatbot/backend/internal/models"

	"gorm.io/gorm"
)

// Repository is the storage surface behind the knowledge base.
type Repository interface {
	SearchContent(ctx context.Context, keywords []string, limit int) ([]models.KnowledgeEntry, error)
	List(ctx context.Context) ([]models.KnowledgeEntry, error)
	Create(ctx context.Context, entry *models.KnowledgeEntry) error
}

// GormRepository implements Repository over gorm/postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// SearchContent returns entries whose content contains any keyword,
// matched case-insensitively, capped at limit.
func (r *GormRepository) SearchContent(ctx context.Context, keywords []string, limit int) ([]models.KnowledgeEntry, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx)
	for i, keyword := range keywords {
		pattern := "%" + keyword + "%"
		if i == 0 {
			query = query.Where("content ILIKE ?", pattern)
		} else {
			query = query.Or("content ILIKE ?", pattern)
		}
	}

	var entries []models.KnowledgeEntry
	err := query.Limit(limit).Find(&entries).Error
	return entries, err
}

// List returns all entries, newest first.
func (r *GormRepository) List(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// Create inserts a new entry.
func (r *GormRepository) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
