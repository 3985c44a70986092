package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/handlers"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/middlewares"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// MockProvider is a mock implementation of answer.Provider for testing.
type MockProvider struct {
	GenerateContentFunc func(ctx context.Context, model string, req answer.GenerateContentRequest) (*answer.GenerateContentResponse, error)
}

func (m *MockProvider) GenerateContent(ctx context.Context, model string, req answer.GenerateContentRequest) (*answer.GenerateContentResponse, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, model, req)
	}
	return &answer.GenerateContentResponse{
		Candidates: []answer.Candidate{{
			Content: answer.Content{Role: "model", Parts: []answer.Part{{Text: "mock reply"}}},
		}},
	}, nil
}

func setupAnswerTestRouter(provider answer.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		GeminiTextModel:   "gemini-pro",
		GeminiVisionModel: "gemini-pro-vision",
		ImageFetchTimeout: time.Second,
	}
	service := answer.NewService(cfg, provider, zerolog.Nop())
	handler := handlers.NewAnswerHandler(service, zerolog.Nop())

	r := gin.New()
	r.Use(middlewares.CORSMiddleware())
	r.POST("/answer", handler.Answer)
	return r
}

func postAnswer(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/answer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnswerHandler_Success(t *testing.T) {
	router := setupAnswerTestRouter(&MockProvider{})

	w := postAnswer(router, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["response"] != "mock reply" {
		t.Errorf("Expected response 'mock reply', got %v", response["response"])
	}
	if _, ok := response["error"]; ok {
		t.Errorf("Success body must not carry an error field")
	}
}

func TestAnswerHandler_EmptyWindow(t *testing.T) {
	router := setupAnswerTestRouter(&MockProvider{})

	w := postAnswer(router, `{"messages":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["error"] == "" || response["error"] == nil {
		t.Errorf("Expected error message, got %v", response)
	}
	if _, ok := response["details"]; ok {
		t.Errorf("Client errors must not carry details")
	}
}

func TestAnswerHandler_MalformedBody(t *testing.T) {
	router := setupAnswerTestRouter(&MockProvider{})

	w := postAnswer(router, `{"messages":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}

func TestAnswerHandler_UpstreamFailure(t *testing.T) {
	provider := &MockProvider{
		GenerateContentFunc: func(ctx context.Context, model string, req answer.GenerateContentRequest) (*answer.GenerateContentResponse, error) {
			return nil, platformerrors.NewErrorWithDetails(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeUpstream, "model endpoint returned status 503",
				`{"error":"overloaded"}`, nil)
		},
	}
	router := setupAnswerTestRouter(provider)

	w := postAnswer(router, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["error"] != "model endpoint returned status 503" {
		t.Errorf("Unexpected error message: %v", response["error"])
	}
	if response["details"] != `{"error":"overloaded"}` {
		t.Errorf("Expected upstream details to pass through, got %v", response["details"])
	}
}

func TestAnswerHandler_UnreachableImageIsClientError(t *testing.T) {
	router := setupAnswerTestRouter(&MockProvider{})

	w := postAnswer(router, `{"messages":[{"role":"user","content":"look","imageUrl":"http://127.0.0.1:1/leaf.png"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for unreachable attachment, got %d", w.Code)
	}
}

func TestAnswerHandler_PreflightReturns200(t *testing.T) {
	router := setupAnswerTestRouter(&MockProvider{})

	req, _ := http.NewRequest("OPTIONS", "/answer", nil)
	req.Header.Set("Origin", "https://garden.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected permissive origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Errorf("Expected allowed headers on preflight")
	}
}
