package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{
		GeminiAPIKey:  "test-key",
		GeminiBaseURL: baseURL,
		GeminiTimeout: 5 * time.Second,
	}, zerolog.Nop())
}

func TestGenerateContentSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody answer.GenerateContentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(answer.GenerateContentResponse{
			Candidates: []answer.Candidate{{
				Content: answer.Content{Role: "model", Parts: []answer.Part{{Text: "reply text"}}},
			}},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.GenerateContent(context.Background(), "gemini-pro", answer.GenerateContentRequest{
		Contents: []answer.Content{{Role: "user", Parts: []answer.Part{{Text: "hi"}}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey, "key travels as a query parameter, never from the caller")
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "reply text", resp.Candidates[0].Content.Parts[0].Text)
}

func TestGenerateContentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GenerateContent(context.Background(), "gemini-pro", answer.GenerateContentRequest{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeUpstream))

	pe := platformerrors.GetPlatformError(err)
	require.NotNil(t, pe)
	assert.Contains(t, pe.Message, "503")
	assert.Contains(t, pe.GetDetails(), "model overloaded")
}

func TestGenerateContentNetworkError(t *testing.T) {
	client := testClient("http://127.0.0.1:1")
	_, err := client.GenerateContent(context.Background(), "gemini-pro", answer.GenerateContentRequest{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNetwork))
}
