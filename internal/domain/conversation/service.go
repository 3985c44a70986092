package conversation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// BlobRemover deletes stored attachment objects by their public URL. Used for
// best-effort cleanup when a conversation is destroyed.
type BlobRemover interface {
	RemoveByURL(ctx context.Context, url string) error
}

// Service orchestrates conversation and turn persistence.
type Service struct {
	repo  Repository
	turns TurnRepository
	blobs BlobRemover
	log   zerolog.Logger
}

// NewService builds the conversation service. blobs may be nil when no blob
// store is configured.
func NewService(repo Repository, turns TurnRepository, blobs BlobRemover, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		turns: turns,
		blobs: blobs,
		log:   log.With().Str("component", "conversation-service").Logger(),
	}
}

// CreateConversation inserts a new conversation with the placeholder title.
func (s *Service) CreateConversation(ctx context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "user id is required", nil)
	}
	conv := NewConversation(userID)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get fetches a conversation by id.
func (s *Service) Get(ctx context.Context, id string) (*Conversation, error) {
	return s.repo.FindByID(ctx, id)
}

// ListByUser returns the user's conversations, most recently active first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	return s.repo.ListByUser(ctx, userID)
}

// AppendTurn persists a turn. Turns are immutable once written.
func (s *Service) AppendTurn(ctx context.Context, turn *Turn) error {
	if !turn.Role.Valid() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "unknown turn role", nil)
	}
	return s.turns.Insert(ctx, turn)
}

// ListTurns returns the conversation's turns in chronological order, ties
// broken by insertion order.
func (s *Service) ListTurns(ctx context.Context, conversationID string) ([]Turn, error) {
	return s.turns.ListByConversationID(ctx, conversationID)
}

// TurnCount returns the number of persisted turns.
func (s *Service) TurnCount(ctx context.Context, conversationID string) (int64, error) {
	return s.turns.CountByConversationID(ctx, conversationID)
}

// ApplyFirstTurnTitle derives the title from the first user turn and persists
// it, touching the conversation's activity timestamp.
func (s *Service) ApplyFirstTurnTitle(ctx context.Context, conversationID, text string, hasImage bool) error {
	title := DeriveTitle(text, hasImage)
	if err := s.repo.UpdateTitle(ctx, conversationID, title); err != nil {
		return err
	}
	return s.repo.Touch(ctx, conversationID)
}

// Rename sets an explicit title, truncated the same way derived titles are.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "title must not be empty", nil)
	}
	runes := []rune(trimmed)
	if len(runes) > TitleMaxRunes {
		trimmed = string(runes[:TitleMaxRunes])
	}
	return s.repo.UpdateTitle(ctx, id, trimmed)
}

// Touch bumps the conversation's last-activity timestamp.
func (s *Service) Touch(ctx context.Context, conversationID string) error {
	return s.repo.Touch(ctx, conversationID)
}

// Delete removes the conversation. Turn rows cascade with it; stored
// attachment objects are removed best-effort afterwards.
func (s *Service) Delete(ctx context.Context, id string) error {
	turns, err := s.turns.ListByConversationID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.blobs == nil {
		return nil
	}
	for _, turn := range turns {
		if turn.ImageURL == "" {
			continue
		}
		if err := s.blobs.RemoveByURL(ctx, turn.ImageURL); err != nil {
			s.log.Warn().Err(err).Str("conversation_id", id).
				Str("image_url", turn.ImageURL).Msg("attachment cleanup failed")
		}
	}
	return nil
}
