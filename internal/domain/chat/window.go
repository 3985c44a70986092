package chat

import (
	"context"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// WindowSize bounds the number of turns sent to the model per reply.
const WindowSize = 5

// WindowTurn is one turn reduced to what the prompt-assembly proxy needs.
type WindowTurn struct {
	Role     conversation.Role `json:"role"`
	Content  string            `json:"content"`
	ImageURL string            `json:"imageUrl,omitempty"`
}

// Window is the bounded, chronologically ordered slice of recent turns. It is
// derived per send and never persisted.
type Window []WindowTurn

// BuildWindow reduces the tail of the ordered turn list to a window of at
// most limit entries. Order is preserved; the window always ends with the
// newest turn.
func BuildWindow(turns []conversation.Turn, limit int) Window {
	if limit <= 0 {
		limit = WindowSize
	}
	start := 0
	if len(turns) > limit {
		start = len(turns) - limit
	}
	window := make(Window, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		window = append(window, WindowTurn{
			Role:     turn.Role,
			Content:  turn.Content,
			ImageURL: turn.ImageURL,
		})
	}
	return window
}

// Validate rejects empty or malformed windows.
func (w Window) Validate(ctx context.Context) error {
	if len(w) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "messages must not be empty", nil)
	}
	if len(w) > WindowSize {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "too many messages", nil)
	}
	for _, turn := range w {
		if !turn.Role.Valid() {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "message role must be user or assistant", nil)
		}
	}
	return nil
}

// Last returns the newest turn of the window.
func (w Window) Last() WindowTurn {
	return w[len(w)-1]
}
