package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/requests"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/responses"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

const userIDHeader = "X-User-Id"

// ConversationHandler exposes the conversation REST surface. Each send
// request drives a short-lived controller through the full pipeline so the
// HTTP path and embedded library callers share the same semantics.
type ConversationHandler struct {
	svc      *conversation.Service
	blobs    chat.BlobStore
	feed     livefeed.Feed
	answerer chat.Answerer
	maxBytes int64
	log      zerolog.Logger
}

func NewConversationHandler(svc *conversation.Service, blobs chat.BlobStore, feed livefeed.Feed, answerer chat.Answerer, maxBytes int64, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		svc:      svc,
		blobs:    blobs,
		feed:     feed,
		answerer: answerer,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "conversation-handler").Logger(),
	}
}

type conversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type turnResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type sendResponse struct {
	UserTurn      turnResponse `json:"user_turn"`
	AssistantTurn turnResponse `json:"assistant_turn"`
}

func toConversationResponse(conv *conversation.Conversation) conversationResponse {
	return conversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

func toTurnResponse(turn conversation.Turn) turnResponse {
	return turnResponse{
		ID:        turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		ImageURL:  turn.ImageURL,
		CreatedAt: turn.CreatedAt,
	}
}

func userID(c *gin.Context) string {
	if id := c.GetHeader(userIDHeader); id != "" {
		return id
	}
	return "anonymous"
}

// Create starts a new conversation for the caller.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	conv, err := h.svc.CreateConversation(ctx, userID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}
	if req.Title != "" {
		if err := h.svc.Rename(ctx, conv.ID, req.Title); err != nil {
			responses.HandleError(c, err, "failed to set title")
			return
		}
		fetched, err := h.svc.Get(ctx, conv.ID)
		if err == nil {
			conv = fetched
		}
	}

	c.JSON(http.StatusCreated, toConversationResponse(conv))
}

// List returns the caller's conversations, most recently active first.
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.svc.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}
	out := make([]conversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, toConversationResponse(conv))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// Turns returns the conversation's full message history in order.
func (h *ConversationHandler) Turns(c *gin.Context) {
	id := c.Param("id")
	if err := h.authorize(c, id); err != nil {
		responses.HandleError(c, err, "conversation not found")
		return
	}
	turns, err := h.svc.ListTurns(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to list turns")
		return
	}
	out := make([]turnResponse, 0, len(turns))
	for _, turn := range turns {
		out = append(out, toTurnResponse(turn))
	}
	c.JSON(http.StatusOK, gin.H{"turns": out})
}

// Delete destroys the conversation, its turns, and its stored attachments.
func (h *ConversationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.authorize(c, id); err != nil {
		responses.HandleError(c, err, "conversation not found")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}
	c.Status(http.StatusNoContent)
}

// Send runs the send pipeline for one user message: optional attachment
// upload, user turn persistence, title derivation on the first turn, model
// call, assistant turn persistence.
func (h *ConversationHandler) Send(c *gin.Context) {
	id := c.Param("id")
	if err := h.authorize(c, id); err != nil {
		responses.HandleError(c, err, "conversation not found")
		return
	}

	var req requests.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	ctrl := chat.NewController(userID(c), h.svc, h.blobs, h.feed, h.answerer, h.maxBytes, h.log)
	defer ctrl.Close()

	if err := ctrl.SelectConversation(ctx, id); err != nil {
		responses.HandleError(c, err, "failed to load conversation")
		return
	}

	ctrl.SetDraft(req.Text)
	if req.ImageData != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "image_data is not valid base64"})
			return
		}
		name := req.ImageName
		if name == "" {
			name = "attachment"
		}
		ctrl.AttachImage(name, data)
	}

	result, err := ctrl.Send(ctx)
	if err != nil {
		h.log.Warn().Err(err).Str("conversation_id", id).Msg("send failed")
		responses.HandleError(c, err, chat.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, sendResponse{
		UserTurn:      toTurnResponse(result.UserTurn),
		AssistantTurn: toTurnResponse(result.AssistantTurn),
	})
}

// authorize resolves the conversation and checks ownership. Conversations of
// other users read as not found.
func (h *ConversationHandler) authorize(c *gin.Context, id string) error {
	ctx := c.Request.Context()
	conv, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if conv.UserID != userID(c) {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeNotFound, "conversation not found", nil)
	}
	return nil
}
