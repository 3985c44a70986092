package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// AnswerResponse is the success body of the answer endpoint.
type AnswerResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the error body of every endpoint. Details carries the
// upstream diagnostic payload and is only populated on server-side failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleError maps domain errors onto HTTP responses. Client-attributable
// failures (validation, unreachable attachment URLs) map to 400 with a bare
// error string; everything else maps to 500 and keeps the diagnostic details.
func HandleError(c *gin.Context, err error, message string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(platformErr.Type)

		errorMessage := platformErr.Message
		if errorMessage == "" {
			errorMessage = message
		}

		body := ErrorResponse{Error: errorMessage}
		if statusCode >= http.StatusInternalServerError {
			body.Details = platformErr.GetDetails()
		}
		c.AbortWithStatusJSON(statusCode, body)
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   message,
		Details: err.Error(),
	})
}

// HandleNewError creates a typed error at the route layer and writes it.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, errorType, message, nil)
	HandleError(c, err, message)
}
