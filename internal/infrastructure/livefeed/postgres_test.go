package livefeed

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
)

func TestPostgresBridgeDispatch(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	bridge := &PostgresBridge{hub: hub, origin: "proc-a", log: zerolog.Nop()}

	var got []Event
	hub.Subscribe(TableTurns, Filter{ConversationID: "conv_a"}, func(ev Event) { got = append(got, ev) })

	remote, err := json.Marshal(encodeWireEvent("proc-b", TableTurns, insertEvent("conv_a", "turn_1")))
	require.NoError(t, err)
	bridge.dispatch(remote)

	// Own notifications are dropped: local subscribers already saw them.
	own, err := json.Marshal(encodeWireEvent("proc-a", TableTurns, insertEvent("conv_a", "turn_2")))
	require.NoError(t, err)
	bridge.dispatch(own)

	bridge.dispatch([]byte("not json"))

	require.Len(t, got, 1)
	assert.Equal(t, "turn_1", got[0].Turn.ID)
	assert.Equal(t, EventInsert, got[0].Type)
	assert.Equal(t, conversation.RoleUser, got[0].Turn.Role)
}

func TestWireEventRoundTrip(t *testing.T) {
	ev := Event{
		Type: EventDelete,
		Turn: conversation.Turn{
			ID:             "turn_9",
			ConversationID: "conv_z",
			Role:           conversation.RoleAssistant,
			Content:        "bye",
			ImageURL:       "https://blobs.example/img.png",
		},
	}
	decoded := encodeWireEvent("proc-a", TableTurns, ev).event()
	assert.Equal(t, ev, decoded)
}
