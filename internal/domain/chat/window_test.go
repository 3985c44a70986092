package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

func makeTurns(n int) []conversation.Turn {
	turns := make([]conversation.Turn, 0, n)
	for i := 0; i < n; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		turns = append(turns, conversation.Turn{
			ID:             fmt.Sprintf("turn_%03d", i),
			ConversationID: "conv_1",
			Role:           role,
			Content:        fmt.Sprintf("message %d", i),
		})
	}
	return turns
}

func TestBuildWindowShorterThanLimit(t *testing.T) {
	window := BuildWindow(makeTurns(3), WindowSize)
	require.Len(t, window, 3)
	assert.Equal(t, "message 0", window[0].Content)
	assert.Equal(t, "message 2", window[2].Content)
}

func TestBuildWindowTakesTail(t *testing.T) {
	window := BuildWindow(makeTurns(9), WindowSize)
	require.Len(t, window, WindowSize)
	assert.Equal(t, "message 4", window[0].Content)
	assert.Equal(t, "message 8", window[len(window)-1].Content)
}

func TestBuildWindowPreservesOrderAndRoles(t *testing.T) {
	window := BuildWindow(makeTurns(6), WindowSize)
	for i := 1; i < len(window); i++ {
		assert.NotEqual(t, window[i-1].Role, window[i].Role, "roles alternate in the fixture")
	}
	assert.Equal(t, conversation.RoleAssistant, window.Last().Role)
}

func TestBuildWindowDefaultsLimit(t *testing.T) {
	window := BuildWindow(makeTurns(10), 0)
	assert.Len(t, window, WindowSize)
}

func TestWindowValidate(t *testing.T) {
	ctx := context.Background()

	err := Window{}.Validate(ctx)
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	tooMany := BuildWindow(makeTurns(WindowSize), WindowSize)
	tooMany = append(tooMany, WindowTurn{Role: conversation.RoleUser, Content: "extra"})
	err = tooMany.Validate(ctx)
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	badRole := Window{{Role: "system", Content: "nope"}}
	err = badRole.Validate(ctx)
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	ok := Window{{Role: conversation.RoleUser, Content: "hello"}}
	assert.NoError(t, ok.Validate(ctx))
}
