package entities

import (
	"time"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        string    `gorm:"type:varchar(50);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);index;not null"`
	Title     string    `gorm:"type:varchar(256);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Turns []Turn `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// Turn stores each message of a conversation. Ordering within a conversation
// is by created_at, ties broken by the monotonic seq column.
type Turn struct {
	Seq            uint      `gorm:"primaryKey;autoIncrement"`
	ID             string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID string    `gorm:"type:varchar(50);index:idx_turn_conversation_created;not null"`
	Role           string    `gorm:"type:varchar(16);not null"`
	Content        string    `gorm:"type:text"`
	ImageURL       string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index:idx_turn_conversation_created;autoCreateTime"`
}

// TableName specifies the table name for Turn.
func (Turn) TableName() string {
	return "turns"
}

// EtoD converts the database entity to the domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from the domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// EtoD converts the database entity to the domain model.
func (t *Turn) EtoD() conversation.Turn {
	return conversation.Turn{
		ID:             t.ID,
		ConversationID: t.ConversationID,
		Role:           conversation.Role(t.Role),
		Content:        t.Content,
		ImageURL:       t.ImageURL,
		CreatedAt:      t.CreatedAt,
	}
}

// NewSchemaTurn creates a database entity from the domain model.
func NewSchemaTurn(t *conversation.Turn) *Turn {
	return &Turn{
		ID:             t.ID,
		ConversationID: t.ConversationID,
		Role:           string(t.Role),
		Content:        t.Content,
		ImageURL:       t.ImageURL,
		CreatedAt:      t.CreatedAt,
	}
}
