package gemini

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// Client implements the answer.Provider interface against the Gemini
// generateContent endpoint. The API key is read from the process environment
// at startup and attached server-side only; it never travels through or from
// a client.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates a Resty-backed Gemini client.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(cfg.GeminiBaseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.GeminiTimeout),
		apiKey: cfg.GeminiAPIKey,
		log:    log.With().Str("component", "gemini-client").Logger(),
	}
}

// GenerateContent calls POST /v1beta/models/{model}:generateContent. The
// request is never retried here: the caller knows whether a resend would
// duplicate a persisted user turn.
func (c *Client) GenerateContent(ctx context.Context, model string, req answer.GenerateContentRequest) (*answer.GenerateContentResponse, error) {
	var completion answer.GenerateContentResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&completion).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeNetwork, "model endpoint unreachable", err)
	}
	if resp.IsError() {
		c.log.Error().
			Int("status", resp.StatusCode()).
			Str("model", model).
			Msg("model endpoint returned error")
		return nil, platformerrors.NewErrorWithDetails(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream,
			fmt.Sprintf("model endpoint returned status %d", resp.StatusCode()),
			resp.String(), nil)
	}
	return &completion, nil
}

// Ensure interface compliance.
var _ answer.Provider = (*Client)(nil)
