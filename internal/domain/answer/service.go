package answer

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/metrics"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/observability"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// Service assembles provider prompts from context windows and returns plain
// text replies. It is stateless: concurrent Answer calls share nothing
// mutable and one call performs at most one image fetch plus exactly one
// model call.
type Service struct {
	provider    Provider
	textModel   string
	visionModel string
	fetcher     *resty.Client
	log         zerolog.Logger
}

// NewService builds the prompt-assembly service.
func NewService(cfg *config.Config, provider Provider, log zerolog.Logger) *Service {
	return &Service{
		provider:    provider,
		textModel:   cfg.GeminiTextModel,
		visionModel: cfg.GeminiVisionModel,
		fetcher:     resty.New().SetTimeout(cfg.ImageFetchTimeout),
		log:         log.With().Str("component", "answer-service").Logger(),
	}
}

// Answer validates the window, builds the provider payload, and extracts the
// reply text. When the newest turn carries an image reference the request is
// a single-turn multimodal prompt and earlier turns are ignored; otherwise
// every non-empty turn is mapped role-for-role after the system instructions.
func (s *Service) Answer(ctx context.Context, window chat.Window) (string, error) {
	if err := window.Validate(ctx); err != nil {
		metrics.RecordAnswer("unknown", "validation_error")
		return "", err
	}

	var (
		model string
		req   GenerateContentRequest
	)

	last := window.Last()
	mode := "text"
	if last.ImageURL != "" {
		mode = "vision"
	}
	ctx, span := observability.StartAnswerSpan(ctx, mode, len(window))
	defer span.End()

	if last.ImageURL != "" {
		imageData, err := s.fetchImage(ctx, last.ImageURL)
		if err != nil {
			return "", err
		}
		model = s.visionModel
		req = GenerateContentRequest{
			Contents: []Content{{
				Role: "user",
				Parts: []Part{
					{Text: systemInstructions + "\n\n" + last.Content},
					{InlineData: &InlineData{
						MimeType: "image/" + MediaSubtype(last.ImageURL),
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			}},
			GenerationConfig: defaultGenerationConfig(),
		}
	} else {
		contents := make([]Content, 0, len(window)+1)
		contents = append(contents, Content{
			Role:  "user",
			Parts: []Part{{Text: systemInstructions}},
		})
		for _, turn := range window {
			if turn.Content == "" {
				continue
			}
			contents = append(contents, Content{
				Role:  providerRole(turn.Role),
				Parts: []Part{{Text: turn.Content}},
			})
		}
		model = s.textModel
		req = GenerateContentRequest{
			Contents:         contents,
			GenerationConfig: defaultGenerationConfig(),
		}
	}

	start := time.Now()
	resp, err := s.provider.GenerateContent(ctx, model, req)
	metrics.RecordModelCall(model, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordAnswer(mode, "error")
		span.RecordError(err)
		return "", err
	}
	metrics.RecordAnswer(mode, "success")
	return extractText(resp), nil
}

// providerRole maps the two-value turn role set onto the model's own: the
// assistant role is renamed "model", user maps directly.
func providerRole(role conversation.Role) string {
	if role == conversation.RoleAssistant {
		return "model"
	}
	return "user"
}

func (s *Service) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := s.fetcher.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		metrics.RecordAttachmentFetch("error", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeAttachmentFetch, "failed to fetch image", err)
	}
	if resp.IsError() {
		metrics.RecordAttachmentFetch("error", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeAttachmentFetch,
			fmt.Sprintf("image fetch returned status %d", resp.StatusCode()), nil)
	}
	body := resp.Body()
	metrics.RecordAttachmentFetch("success", int64(len(body)))
	return body, nil
}

// extractText pulls the first candidate's first text part. A structurally
// empty but successful response degrades to the fixed fallback reply instead
// of failing the request.
func extractText(resp *GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return fallbackReply
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return fallbackReply
}
