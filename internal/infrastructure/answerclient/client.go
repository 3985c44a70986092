// Package answerclient is the controller-side transport to the prompt
// assembly proxy's /answer endpoint.
package answerclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// Client implements the chat.Answerer interface over HTTP.
type Client struct {
	httpClient *resty.Client
}

type answerRequest struct {
	Messages []chat.WindowTurn `json:"messages"`
}

type answerResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// NewClient creates a Resty-backed answer client.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(90 * time.Second),
	}
}

// Answer posts the window to /answer and returns the reply text. Transport
// failures map to NETWORK; error responses are classified by their status.
func (c *Client) Answer(ctx context.Context, window chat.Window) (string, error) {
	var body answerResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(answerRequest{Messages: window}).
		Post("/answer")
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeNetwork, "answer proxy unreachable", err)
	}
	if unmarshalErr := json.Unmarshal(resp.Body(), &body); unmarshalErr != nil && !resp.IsError() {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "malformed answer proxy response", unmarshalErr)
	}
	if resp.IsError() {
		errorType := platformerrors.ErrorTypeUpstream
		if resp.StatusCode() == 400 {
			errorType = platformerrors.ErrorTypeValidation
		}
		message := body.Error
		if message == "" {
			message = "answer proxy request failed"
		}
		return "", platformerrors.NewErrorWithDetails(ctx, platformerrors.LayerInfrastructure,
			errorType, message, body.Details, nil)
	}
	return body.Response, nil
}

// Ensure interface compliance.
var _ chat.Answerer = (*Client)(nil)
