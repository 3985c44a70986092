package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/requests"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/responses"
)

// AnswerHandler exposes the prompt-assembly endpoint.
type AnswerHandler struct {
	service *answer.Service
	log     zerolog.Logger
}

func NewAnswerHandler(service *answer.Service, log zerolog.Logger) *AnswerHandler {
	return &AnswerHandler{
		service: service,
		log:     log.With().Str("component", "answer-handler").Logger(),
	}
}

// Answer accepts a context window and returns the model's reply text. The
// window is the caller's recent turns, newest last; the newest turn may carry
// an image URL, which switches the request to the vision model.
func (h *AnswerHandler) Answer(c *gin.Context) {
	var req requests.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "invalid request body"})
		return
	}

	reply, err := h.service.Answer(c.Request.Context(), chat.Window(req.Messages))
	if err != nil {
		h.log.Warn().Err(err).Msg("answer request failed")
		responses.HandleError(c, err, "failed to generate response")
		return
	}

	c.JSON(http.StatusOK, responses.AnswerResponse{Response: reply})
}
