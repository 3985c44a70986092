// Package livefeed is an in-process change feed: repositories publish
// row-level insert/delete events, controllers subscribe to the subset scoped
// to one conversation. It mirrors the durable store; it never owns data.
package livefeed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/metrics"
)

// TableTurns identifies the turn collection.
const TableTurns = "turns"

// EventType is the kind of row change.
type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
)

// Event is one row-level change notification.
type Event struct {
	Type EventType
	Turn conversation.Turn
}

// Filter scopes a subscription to one conversation.
type Filter struct {
	ConversationID string
}

// Matches reports whether the event falls inside the filter.
func (f Filter) Matches(ev Event) bool {
	return f.ConversationID == "" || f.ConversationID == ev.Turn.ConversationID
}

// Handler receives matching events.
type Handler func(Event)

// Feed is the subscriber-facing contract.
type Feed interface {
	Subscribe(table string, filter Filter, handler Handler) *Subscription
}

// Publisher is the repository-facing contract.
type Publisher interface {
	Publish(table string, ev Event)
}

// Backend is a feed that repositories can also publish into.
type Backend interface {
	Feed
	Publisher
}

// NewBackend selects the configured feed backend: the in-process hub alone,
// or the hub bridged across processes through PostgreSQL LISTEN/NOTIFY. The
// cleanup func stops the backend.
func NewBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, func(), error) {
	hub := NewHub(log)
	if !cfg.IsPostgresFeed() {
		return hub, func() {}, nil
	}
	bridge, err := NewPostgresBridge(ctx, cfg.DatabaseURL, hub, log)
	if err != nil {
		return nil, nil, err
	}
	return bridge, bridge.Close, nil
}

// Hub is a mutex-based fan-out of change events. Thread-safe via sync.RWMutex.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
	log    zerolog.Logger
}

// Subscription is one registered handler. Unsubscribe is synchronous: once it
// returns, the handler will not be invoked again.
type Subscription struct {
	hub     *Hub
	table   string
	id      uint64
	filter  Filter
	handler Handler

	// deliverMu serializes handler invocations. Unsubscribe drains through it,
	// so a returned Unsubscribe means no delivery is in flight.
	deliverMu sync.Mutex
	removed   bool
	once      sync.Once
}

// NewHub creates an empty feed hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]*Subscription),
		log:  log.With().Str("component", "live-feed").Logger(),
	}
}

// Subscribe registers a handler for changes on table matching filter.
func (h *Hub) Subscribe(table string, filter Filter, handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		hub:     h,
		table:   table,
		id:      h.nextID,
		filter:  filter,
		handler: handler,
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*Subscription)
	}
	h.subs[table][sub.id] = sub
	return sub
}

// Publish delivers the event to every matching subscriber. Delivery happens
// on the caller's goroutine, after the subscriber set snapshot is taken and
// outside the hub lock, so a handler may subscribe or unsubscribe other
// subscriptions without deadlocking.
func (h *Hub) Publish(table string, ev Event) {
	metrics.RecordFeedEvent(table, string(ev.Type))

	h.mu.RLock()
	matched := make([]*Subscription, 0, len(h.subs[table]))
	for _, sub := range h.subs[table] {
		if sub.filter.Matches(ev) {
			matched = append(matched, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range matched {
		sub.deliver(ev)
	}
}

func (s *Subscription) deliver(ev Event) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.removed {
		return
	}
	s.handler(ev)
}

// SubscriberCount returns the number of active subscriptions for a table.
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Unsubscribe removes the subscription and waits for any in-flight delivery
// to finish, so once it returns the handler is never invoked again. Safe to
// call multiple times. It must not be called from inside the subscription's
// own handler; unsubscribing a different subscription from a handler is fine.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs[s.table], s.id)
		s.hub.mu.Unlock()

		s.deliverMu.Lock()
		s.removed = true
		s.deliverMu.Unlock()
	})
}
