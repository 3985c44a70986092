package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaSubtype(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/leaf.png", "png"},
		{"https://cdn.example.com/leaf.JPG", "jpeg"},
		{"https://cdn.example.com/leaf.jpeg", "jpeg"},
		{"https://cdn.example.com/leaf.webp", "webp"},
		{"https://cdn.example.com/leaf.png?token=abc", "png"},
		{"https://cdn.example.com/leaf.gif#frag", "gif"},
		{"https://cdn.example.com/leaf", "jpeg"},
		{"https://cdn.example.com/leaf.tiff", "jpeg"},
		{"", "jpeg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MediaSubtype(tt.url), "url %q", tt.url)
	}
}

func TestDefaultGenerationConfig(t *testing.T) {
	cfg := defaultGenerationConfig()
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.Equal(t, 32, cfg.TopK)
	assert.InDelta(t, 1.0, cfg.TopP, 1e-9)
	assert.Equal(t, 2048, cfg.MaxOutputTokens)
}
