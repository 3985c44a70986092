package livefeed

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
)

func insertEvent(conversationID, turnID string) Event {
	return Event{
		Type: EventInsert,
		Turn: conversation.Turn{ID: turnID, ConversationID: conversationID, Role: conversation.RoleUser},
	}
}

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	var gotA, gotB []Event
	hub.Subscribe(TableTurns, Filter{ConversationID: "conv_a"}, func(ev Event) { gotA = append(gotA, ev) })
	hub.Subscribe(TableTurns, Filter{ConversationID: "conv_b"}, func(ev Event) { gotB = append(gotB, ev) })

	hub.Publish(TableTurns, insertEvent("conv_a", "turn_1"))
	hub.Publish(TableTurns, insertEvent("conv_b", "turn_2"))
	hub.Publish(TableTurns, insertEvent("conv_c", "turn_3"))

	require.Len(t, gotA, 1)
	assert.Equal(t, "turn_1", gotA[0].Turn.ID)
	require.Len(t, gotB, 1)
	assert.Equal(t, "turn_2", gotB[0].Turn.ID)
}

func TestHubEmptyFilterMatchesAll(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	var got []Event
	hub.Subscribe(TableTurns, Filter{}, func(ev Event) { got = append(got, ev) })

	hub.Publish(TableTurns, insertEvent("conv_a", "turn_1"))
	hub.Publish(TableTurns, insertEvent("conv_b", "turn_2"))
	assert.Len(t, got, 2)
}

func TestHubTableIsolation(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	var got []Event
	hub.Subscribe(TableTurns, Filter{}, func(ev Event) { got = append(got, ev) })

	hub.Publish("other_table", insertEvent("conv_a", "turn_1"))
	assert.Empty(t, got)
}

func TestUnsubscribeIsSynchronous(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	delivered := 0
	sub := hub.Subscribe(TableTurns, Filter{}, func(ev Event) { delivered++ })

	hub.Publish(TableTurns, insertEvent("conv_a", "turn_1"))
	sub.Unsubscribe()
	hub.Publish(TableTurns, insertEvent("conv_a", "turn_2"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 0, hub.SubscriberCount(TableTurns))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(TableTurns, Filter{}, func(ev Event) {})
	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount(TableTurns))
}

func TestHandlerMayUnsubscribeSibling(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	var other *Subscription
	otherDelivered := 0
	other = hub.Subscribe(TableTurns, Filter{}, func(ev Event) { otherDelivered++ })

	delivered := 0
	hub.Subscribe(TableTurns, Filter{}, func(ev Event) {
		delivered++
		other.Unsubscribe()
	})

	// Must not deadlock: handlers run outside the hub lock.
	hub.Publish(TableTurns, insertEvent("conv_a", "turn_1"))
	hub.Publish(TableTurns, insertEvent("conv_a", "turn_2"))
	assert.Equal(t, 2, delivered)
	// The sibling saw at most the event in flight when it was removed.
	assert.LessOrEqual(t, otherDelivered, 1)
	assert.Equal(t, 1, hub.SubscriberCount(TableTurns))
}

func TestUnsubscribeWaitsForInFlightDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	entered := make(chan struct{})
	release := make(chan struct{})
	sub := hub.Subscribe(TableTurns, Filter{}, func(ev Event) {
		close(entered)
		<-release
	})

	published := make(chan struct{})
	go func() {
		hub.Publish(TableTurns, insertEvent("conv_a", "turn_1"))
		close(published)
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Unsubscribe returned while the handler was still executing")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unsubscribe did not return after the delivery finished")
	}
	<-published

	hub.Publish(TableTurns, insertEvent("conv_a", "turn_2"))
	assert.Equal(t, 0, hub.SubscriberCount(TableTurns))
}
