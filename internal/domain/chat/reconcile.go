package chat

import (
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
)

// Reconcile merges one live-feed event into the locally held turn list and
// returns the updated list. It is pure: the input slice is not mutated.
//
// Inserts append unless a turn with the same id is already present, which
// absorbs the feed echo of an optimistic local append. Deletes remove by id.
func Reconcile(local []conversation.Turn, ev livefeed.Event) []conversation.Turn {
	switch ev.Type {
	case livefeed.EventInsert:
		for _, turn := range local {
			if turn.ID == ev.Turn.ID {
				return local
			}
		}
		merged := make([]conversation.Turn, len(local), len(local)+1)
		copy(merged, local)
		return append(merged, ev.Turn)

	case livefeed.EventDelete:
		merged := make([]conversation.Turn, 0, len(local))
		for _, turn := range local {
			if turn.ID != ev.Turn.ID {
				merged = append(merged, turn)
			}
		}
		return merged
	}
	return local
}
