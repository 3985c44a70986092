package livefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
)

// notifyChannel is the pg_notify channel carrying row change events.
const notifyChannel = "livefeed_events"

// wireEvent is the NOTIFY payload. Origin lets each bridge drop its own
// events: local subscribers already received them synchronously.
type wireEvent struct {
	Origin         string    `json:"origin"`
	Table          string    `json:"table"`
	Type           EventType `json:"type"`
	TurnID         string    `json:"turn_id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func encodeWireEvent(origin, table string, ev Event) wireEvent {
	return wireEvent{
		Origin:         origin,
		Table:          table,
		Type:           ev.Type,
		TurnID:         ev.Turn.ID,
		ConversationID: ev.Turn.ConversationID,
		Role:           string(ev.Turn.Role),
		Content:        ev.Turn.Content,
		ImageURL:       ev.Turn.ImageURL,
		CreatedAt:      ev.Turn.CreatedAt,
	}
}

func (w wireEvent) event() Event {
	return Event{
		Type: w.Type,
		Turn: conversation.Turn{
			ID:             w.TurnID,
			ConversationID: w.ConversationID,
			Role:           conversation.Role(w.Role),
			Content:        w.Content,
			ImageURL:       w.ImageURL,
			CreatedAt:      w.CreatedAt,
		},
	}
}

// PostgresBridge extends a Hub across processes over LISTEN/NOTIFY: local
// publishes fan out synchronously and are then broadcast to peer processes,
// while notifications from peers are republished into the local hub.
// Subscriptions keep the Hub's delivery and teardown semantics.
type PostgresBridge struct {
	hub    *Hub
	pool   *pgxpool.Pool
	origin string
	log    zerolog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPostgresBridge connects the bridge and starts its listener.
func NewPostgresBridge(ctx context.Context, dsn string, hub *Hub, log zerolog.Logger) (*PostgresBridge, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	b := &PostgresBridge{
		hub:    hub,
		pool:   pool,
		origin: uuid.NewString(),
		log:    log.With().Str("component", "live-feed-bridge").Logger(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go b.listen(listenCtx)
	return b, nil
}

// Subscribe delegates to the local hub.
func (b *PostgresBridge) Subscribe(table string, filter Filter, handler Handler) *Subscription {
	return b.hub.Subscribe(table, filter, handler)
}

// Publish fans out locally first, then notifies peer processes. A failed
// broadcast is logged and dropped: peers resync from the store on their next
// conversation load.
func (b *PostgresBridge) Publish(table string, ev Event) {
	b.hub.Publish(table, ev)

	payload, err := json.Marshal(encodeWireEvent(b.origin, table, ev))
	if err != nil {
		b.log.Error().Err(err).Msg("encode feed notification")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.pool.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, string(payload)); err != nil {
		b.log.Error().Err(err).Str("table", table).Msg("broadcast feed event")
	}
}

// Close stops the listener and releases the pool.
func (b *PostgresBridge) Close() {
	b.cancel()
	<-b.done
	b.pool.Close()
}

func (b *PostgresBridge) listen(ctx context.Context) {
	defer close(b.done)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := b.listenOnce(ctx); err != nil && ctx.Err() == nil {
			b.log.Warn().Err(err).Msg("feed listener reconnecting")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *PostgresBridge) listenOnce(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		b.dispatch([]byte(notification.Payload))
	}
}

// dispatch republishes a peer notification into the local hub.
func (b *PostgresBridge) dispatch(raw []byte) {
	var wev wireEvent
	if err := json.Unmarshal(raw, &wev); err != nil {
		b.log.Warn().Err(err).Msg("malformed feed notification")
		return
	}
	if wev.Origin == b.origin {
		return
	}
	b.hub.Publish(wev.Table, wev.event())
}

// Interface compliance for both roles.
var (
	_ Feed      = (*PostgresBridge)(nil)
	_ Publisher = (*PostgresBridge)(nil)
)
