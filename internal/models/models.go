package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation groups the messages exchanged in one chat session.
// UserID is empty for anonymous sessions, which are never persisted.
type Conversation struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID if the caller did not provide one.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Message is a single turn in a conversation. Rows are immutable once
// created; ordering within a conversation follows CreatedAt.
type Message struct {
	ID             string            `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID string            `json:"conversation_id" gorm:"type:uuid;index;not null"`
	Role           string            `json:"role" gorm:"not null"`
	Content        string            `json:"content" gorm:"not null"`
	Metadata       datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// KnowledgeEntry is one article in the knowledge base. Title and Content
// are required; Tags may be empty. Entries are created and updated through
// the admin endpoint and never deleted by the chat pipeline.
type KnowledgeEntry struct {
	ID        string                      `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string                      `json:"title" gorm:"not null"`
	Content   string                      `json:"content" gorm:"not null"`
	Category  string                      `json:"category" gorm:"index"`
	Tags      datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// TableName keeps the table name used by the hosted schema.
func (KnowledgeEntry) TableName() string {
	return "knowledge_base"
}

func (e *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// Feedback is a user rating of the assistant, optionally with a comment.
type Feedback struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
