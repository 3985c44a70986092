package conversation

import "context"

// Repository exposes CRUD operations for conversation metadata.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id string) (*Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TurnRepository persists individual conversation turns.
type TurnRepository interface {
	Insert(ctx context.Context, turn *Turn) error
	ListByConversationID(ctx context.Context, conversationID string) ([]Turn, error)
	CountByConversationID(ctx context.Context, conversationID string) (int64, error)
}
