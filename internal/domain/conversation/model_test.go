package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hasImage bool
		want     string
	}{
		{"short text", "Why are my leaves curling?", false, "Why are my leaves curling?"},
		{"trims whitespace", "  hello  ", false, "hello"},
		{"empty text no image", "", false, DefaultTitle},
		{"empty text with image", "", true, ImageTitleFallback},
		{"placeholder with image", ImagePlaceholderText, true, ImageTitleFallback},
		{"placeholder without image kept", ImagePlaceholderText, false, ImagePlaceholderText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.text, tt.hasImage))
		})
	}
}

func TestDeriveTitleTruncatesAtRuneBoundary(t *testing.T) {
	long := strings.Repeat("ab", TitleMaxRunes)
	got := DeriveTitle(long, false)
	assert.Equal(t, TitleMaxRunes, len([]rune(got)))

	// Multibyte input must not be cut mid-rune.
	wide := strings.Repeat("草", TitleMaxRunes+10)
	got = DeriveTitle(wide, false)
	assert.Equal(t, TitleMaxRunes, len([]rune(got)))
	assert.Equal(t, strings.Repeat("草", TitleMaxRunes), got)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
	assert.False(t, Role("").Valid())
}

func TestNewConversationDefaults(t *testing.T) {
	conv := NewConversation("grower-1")
	assert.Equal(t, DefaultTitle, conv.Title)
	assert.Equal(t, "grower-1", conv.UserID)
	assert.True(t, strings.HasPrefix(conv.ID, "conv_"))
}

func TestNewTurnIDs(t *testing.T) {
	turn := NewTurn("conv_1", RoleUser, "hello", "")
	assert.True(t, strings.HasPrefix(turn.ID, "turn_"))
	assert.Equal(t, "conv_1", turn.ConversationID)
}
