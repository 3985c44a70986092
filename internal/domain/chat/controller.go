package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// BlobStore uploads attachment bytes and issues public URLs for them.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// Answerer turns a context window into the assistant's reply text.
type Answerer interface {
	Answer(ctx context.Context, window Window) (string, error)
}

// Attachment is a pending image in the compose area.
type Attachment struct {
	Filename string
	Data     []byte
}

// SendResult reports the turns a successful send persisted.
type SendResult struct {
	UserTurn      conversation.Turn
	AssistantTurn conversation.Turn
}

// Controller owns the message list of one active conversation, keeps it in
// sync with the durable store via the live feed, and runs the send pipeline:
// upload attachment, persist user turn, derive the context window, call the
// answer proxy, persist the assistant turn.
//
// A controller serializes its own sends: a second Send is rejected while one
// is outstanding. Controllers in other processes are reconciled through the
// feed, not excluded.
type Controller struct {
	userID   string
	svc      *conversation.Service
	blobs    BlobStore
	feed     livefeed.Feed
	answerer Answerer
	maxBytes int64
	log      zerolog.Logger

	mu             sync.Mutex
	conversationID string
	turns          []conversation.Turn
	sub            *livefeed.Subscription
	sending        bool
	draftText      string
	draftImage     *Attachment
}

// NewController builds a controller for one user. It is unbound until
// SelectConversation or CreateConversation is called.
func NewController(userID string, svc *conversation.Service, blobs BlobStore, feed livefeed.Feed, answerer Answerer, maxAttachmentBytes int64, log zerolog.Logger) *Controller {
	return &Controller{
		userID:   userID,
		svc:      svc,
		blobs:    blobs,
		feed:     feed,
		answerer: answerer,
		maxBytes: maxAttachmentBytes,
		log:      log.With().Str("component", "chat-controller").Str("user_id", userID).Logger(),
	}
}

// SelectConversation binds the controller to a conversation: the previous
// subscription is torn down synchronously, the turn list is reloaded in
// chronological order, and a new feed subscription scoped to the id is
// established before the reload so no event is missed.
func (c *Controller) SelectConversation(ctx context.Context, id string) error {
	if id == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "conversation id is required", nil)
	}

	// Tear down the old subscription outside the controller mutex: Unsubscribe
	// drains in-flight deliveries, and those deliveries take the mutex.
	c.mu.Lock()
	old := c.sub
	c.sub = nil
	c.mu.Unlock()
	if old != nil {
		old.Unsubscribe()
	}

	c.mu.Lock()
	c.conversationID = id
	c.turns = nil
	c.sub = c.feed.Subscribe(livefeed.TableTurns, livefeed.Filter{ConversationID: id}, c.handleEvent)
	c.mu.Unlock()

	loaded, err := c.svc.ListTurns(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversationID != id {
		// Rebound while loading; drop the stale result.
		return nil
	}
	seen := make(map[string]struct{}, len(loaded))
	for _, turn := range loaded {
		seen[turn.ID] = struct{}{}
	}
	merged := loaded
	for _, turn := range c.turns {
		if _, ok := seen[turn.ID]; !ok {
			merged = append(merged, turn)
		}
	}
	c.turns = merged
	return nil
}

// CreateConversation inserts a fresh conversation for the user and binds to it.
func (c *Controller) CreateConversation(ctx context.Context) (string, error) {
	conv, err := c.svc.CreateConversation(ctx, c.userID)
	if err != nil {
		return "", err
	}
	if err := c.SelectConversation(ctx, conv.ID); err != nil {
		return "", err
	}
	return conv.ID, nil
}

// DeleteConversation destroys the conversation; when it is the bound one the
// controller immediately creates and binds a replacement so it is never left
// without a conversation.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	wasBound := c.conversationID == id
	var old *livefeed.Subscription
	if wasBound {
		old = c.sub
		c.sub = nil
		c.conversationID = ""
		c.turns = nil
	}
	c.mu.Unlock()
	if old != nil {
		old.Unsubscribe()
	}

	if wasBound {
		_, err := c.CreateConversation(ctx)
		return err
	}
	return nil
}

// SetDraft replaces the compose text.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftText = text
}

// AttachImage stages an image in the compose area.
func (c *Controller) AttachImage(filename string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftImage = &Attachment{Filename: filename, Data: data}
}

// Draft returns the current compose state.
func (c *Controller) Draft() (string, *Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftText, c.draftImage
}

// Send runs the pipeline for the current draft. The compose input is cleared
// once the user turn is persisted, so a later failure cannot duplicate it on
// retry; earlier failures preserve the draft. A failure after the user turn
// is persisted leaves that turn in place — resending produces a fresh
// assistant attempt, never a rollback.
func (c *Controller) Send(ctx context.Context) (*SendResult, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeConflict, "a send is already in progress", nil)
	}
	if c.conversationID == "" {
		c.mu.Unlock()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "no conversation selected", nil)
	}
	text := strings.TrimSpace(c.draftText)
	image := c.draftImage
	if text == "" && image == nil {
		c.mu.Unlock()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "nothing to send", nil)
	}
	conversationID := c.conversationID
	c.sending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	imageURL := ""
	if image != nil {
		url, err := c.uploadAttachment(ctx, image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	content := text
	if content == "" {
		content = conversation.ImagePlaceholderText
	}

	userTurn := conversation.NewTurn(conversationID, conversation.RoleUser, content, imageURL)
	if err := c.svc.AppendTurn(ctx, userTurn); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.turns = Reconcile(c.turns, livefeed.Event{Type: livefeed.EventInsert, Turn: *userTurn})
	isFirstTurn := len(c.turns) == 1
	window := BuildWindow(c.turns, WindowSize)
	c.draftText = ""
	c.draftImage = nil
	c.mu.Unlock()

	if isFirstTurn {
		if err := c.svc.ApplyFirstTurnTitle(ctx, conversationID, text, imageURL != ""); err != nil {
			return nil, err
		}
	}

	reply, err := c.answerer.Answer(ctx, window)
	if err != nil {
		return nil, err
	}

	assistantTurn := conversation.NewTurn(conversationID, conversation.RoleAssistant, reply, "")
	if err := c.svc.AppendTurn(ctx, assistantTurn); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.turns = Reconcile(c.turns, livefeed.Event{Type: livefeed.EventInsert, Turn: *assistantTurn})
	c.mu.Unlock()

	if err := c.svc.Touch(ctx, conversationID); err != nil {
		c.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("activity timestamp update failed")
	}

	return &SendResult{UserTurn: *userTurn, AssistantTurn: *assistantTurn}, nil
}

// Turns returns a snapshot of the local turn list.
func (c *Controller) Turns() []conversation.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]conversation.Turn, len(c.turns))
	copy(snapshot, c.turns)
	return snapshot
}

// ConversationID returns the bound conversation id, or "".
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Sending reports whether a send is outstanding.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Close releases the feed subscription. Synchronous: once it returns no
// further events will mutate the controller.
func (c *Controller) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (c *Controller) uploadAttachment(ctx context.Context, image *Attachment) (string, error) {
	if c.blobs == nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeAttachmentStore, "attachment storage is not configured", nil)
	}
	if c.maxBytes > 0 && int64(len(image.Data)) > c.maxBytes {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("attachment exceeds max size of %d bytes", c.maxBytes), nil)
	}

	contentType := mimetype.Detect(image.Data).String()
	if !strings.HasPrefix(contentType, "image/") {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported attachment type %s", contentType), nil)
	}

	key := fmt.Sprintf("%s/%d-%s", c.userID, time.Now().UnixNano(), sanitizeFilename(image.Filename))
	if err := c.blobs.Upload(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), contentType); err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeAttachmentStore, "attachment upload failed", err)
	}
	return c.blobs.PublicURL(key), nil
}

func (c *Controller) handleEvent(ev livefeed.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Turn.ConversationID != c.conversationID {
		return
	}
	c.turns = Reconcile(c.turns, ev)
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, base)
}
