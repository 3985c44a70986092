package conversation

import (
	"strings"
	"time"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/turnid"
)

// Role indicates who authored a turn. The set is closed: the pipeline only
// ever writes user and assistant turns.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

const (
	// DefaultTitle is the placeholder until the first user turn is persisted.
	DefaultTitle = "New conversation"

	// ImageTitleFallback is used when the first turn carries only an image.
	ImageTitleFallback = "Image analysis"

	// TitleMaxRunes bounds derived titles.
	TitleMaxRunes = 50

	// ImagePlaceholderText is stored as the turn content for image-only sends.
	ImagePlaceholderText = "Please analyze this image"
)

// Conversation is one chat thread owned by a user.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Turn is one message within a conversation. Turns are append-only; they are
// never mutated after creation and are removed only by conversation cascade.
type Turn struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	ImageURL       string
	CreatedAt      time.Time
}

// NewConversation creates a conversation with the default placeholder title.
func NewConversation(userID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        turnid.NewConversationID(),
		UserID:    userID,
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTurn creates a turn for the given conversation.
func NewTurn(conversationID string, role Role, content, imageURL string) *Turn {
	return &Turn{
		ID:             turnid.NewTurnID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ImageURL:       imageURL,
		CreatedAt:      time.Now(),
	}
}

// DeriveTitle computes the conversation title from its first user turn:
// a truncated prefix of the text, or a fixed label for image-only turns.
func DeriveTitle(text string, hasImage bool) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (hasImage && trimmed == ImagePlaceholderText) {
		if hasImage {
			return ImageTitleFallback
		}
		return DefaultTitle
	}
	runes := []rune(trimmed)
	if len(runes) <= TitleMaxRunes {
		return trimmed
	}
	return string(runes[:TitleMaxRunes])
}
