package answer

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

type mockProvider struct {
	GenerateContentFunc func(ctx context.Context, model string, req GenerateContentRequest) (*GenerateContentResponse, error)
	model               string
	req                 GenerateContentRequest
	calls               int
}

func (m *mockProvider) GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (*GenerateContentResponse, error) {
	m.calls++
	m.model = model
	m.req = req
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, model, req)
	}
	return textResponse("the leaves show early blight"), nil
}

func textResponse(text string) *GenerateContentResponse {
	return &GenerateContentResponse{
		Candidates: []Candidate{{
			Content: Content{Role: "model", Parts: []Part{{Text: text}}},
		}},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		GeminiTextModel:   "gemini-pro",
		GeminiVisionModel: "gemini-pro-vision",
		ImageFetchTimeout: 5 * time.Second,
	}
}

func TestAnswerTextPathShape(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	window := chat.Window{
		{Role: conversation.RoleUser, Content: "hello"},
	}
	reply, err := svc.Answer(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, "the leaves show early blight", reply)
	assert.Equal(t, "gemini-pro", provider.model)

	// System instructions lead as a user-role content, then the window turns.
	require.Len(t, provider.req.Contents, 2)
	assert.Equal(t, "user", provider.req.Contents[0].Role)
	assert.True(t, strings.HasPrefix(provider.req.Contents[0].Parts[0].Text, "You are AgroDoctor"))
	assert.Equal(t, "user", provider.req.Contents[1].Role)
	assert.Equal(t, "hello", provider.req.Contents[1].Parts[0].Text)

	require.NotNil(t, provider.req.GenerationConfig)
	assert.Equal(t, 2048, provider.req.GenerationConfig.MaxOutputTokens)
}

func TestAnswerMapsAssistantRoleToModel(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	window := chat.Window{
		{Role: conversation.RoleUser, Content: "what about my basil"},
		{Role: conversation.RoleAssistant, Content: "it looks like downy mildew"},
		{Role: conversation.RoleUser, Content: "how do I treat it"},
	}
	_, err := svc.Answer(context.Background(), window)
	require.NoError(t, err)

	require.Len(t, provider.req.Contents, 4)
	assert.Equal(t, "model", provider.req.Contents[2].Role)
	assert.Equal(t, "user", provider.req.Contents[3].Role)
}

func TestAnswerSkipsEmptyTurns(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	window := chat.Window{
		{Role: conversation.RoleUser, Content: ""},
		{Role: conversation.RoleUser, Content: "real question"},
	}
	_, err := svc.Answer(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, provider.req.Contents, 2)
	assert.Equal(t, "real question", provider.req.Contents[1].Parts[0].Text)
}

func TestAnswerImagePathIsSingleTurn(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4E, 0x47, 1, 2, 3}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer server.Close()

	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	window := chat.Window{
		{Role: conversation.RoleUser, Content: "old question"},
		{Role: conversation.RoleAssistant, Content: "old answer"},
		{Role: conversation.RoleUser, Content: "what is on this leaf", ImageURL: server.URL + "/leaf.png"},
	}
	_, err := svc.Answer(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, "gemini-pro-vision", provider.model)

	// Earlier turns are dropped: one content with instructions+question+image.
	require.Len(t, provider.req.Contents, 1)
	parts := provider.req.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "what is on this leaf")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageBytes), parts[1].InlineData.Data)
}

func TestAnswerImageFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	window := chat.Window{
		{Role: conversation.RoleUser, Content: "look", ImageURL: server.URL + "/missing.jpg"},
	}
	_, err := svc.Answer(context.Background(), window)
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeAttachmentFetch))
	assert.Equal(t, 0, provider.calls, "no model call after a failed fetch")
}

func TestAnswerEmptyWindowRejected(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	_, err := svc.Answer(context.Background(), chat.Window{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))
}

func TestAnswerFallbackOnEmptyCandidates(t *testing.T) {
	provider := &mockProvider{
		GenerateContentFunc: func(ctx context.Context, model string, req GenerateContentRequest) (*GenerateContentResponse, error) {
			return &GenerateContentResponse{}, nil
		},
	}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	reply, err := svc.Answer(context.Background(), chat.Window{{Role: conversation.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}

func TestAnswerFallbackOnTextlessParts(t *testing.T) {
	provider := &mockProvider{
		GenerateContentFunc: func(ctx context.Context, model string, req GenerateContentRequest) (*GenerateContentResponse, error) {
			return &GenerateContentResponse{
				Candidates: []Candidate{{Content: Content{Parts: []Part{{}}}}},
			}, nil
		},
	}
	svc := NewService(testConfig(), provider, zerolog.Nop())

	reply, err := svc.Answer(context.Background(), chat.Window{{Role: conversation.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}
