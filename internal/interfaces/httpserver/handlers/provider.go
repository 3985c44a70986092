package handlers

import (
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
)

// Provider wires HTTP handlers.
type Provider struct {
	Answer       *AnswerHandler
	Conversation *ConversationHandler
}

// NewProvider wires the handlers. answerer is the controller-facing answer
// path; it may be the embedded service or a remote proxy client, while the
// /answer endpoint always serves the local service.
func NewProvider(cfg *config.Config, answerService *answer.Service, convService *conversation.Service, blobs chat.BlobStore, feed livefeed.Feed, answerer chat.Answerer, log zerolog.Logger) *Provider {
	return &Provider{
		Answer:       NewAnswerHandler(answerService, log),
		Conversation: NewConversationHandler(convService, blobs, feed, answerer, cfg.MaxAttachmentBytes, log),
	}
}
