package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeAttachmentStore ErrorType = "ATTACHMENT_STORE"
	ErrorTypeAttachmentFetch ErrorType = "ATTACHMENT_FETCH"
	ErrorTypeUpstream        ErrorType = "UPSTREAM"
	ErrorTypeNetwork         ErrorType = "NETWORK"
	ErrorTypeDatabaseError   ErrorType = "DATABASE_ERROR"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL"
)

// Layer represents the application layer where the error occurred.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError carries the error category plus diagnostic context.
type PlatformError struct {
	Type      ErrorType
	Message   string
	Details   string
	Err       error
	RequestID string
	Layer     Layer
	Timestamp time.Time
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the error type.
func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

// GetDetails returns the diagnostic detail string, falling back to the cause.
func (e *PlatformError) GetDetails() string {
	if e.Details != "" {
		return e.Details
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// NewError creates a new PlatformError.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: requestIDFromContext(ctx),
		Layer:     layer,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorWithDetails creates a PlatformError carrying a raw diagnostic payload,
// such as an upstream response body.
func NewErrorWithDetails(ctx context.Context, layer Layer, errorType ErrorType, message, details string, err error) *PlatformError {
	pe := NewError(ctx, layer, errorType, message, err)
	pe.Details = details
	return pe
}

// GetPlatformError extracts a PlatformError from an error chain, or nil.
func GetPlatformError(err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// IsType reports whether err is a PlatformError of the given type.
func IsType(err error, errorType ErrorType) bool {
	pe := GetPlatformError(err)
	return pe != nil && pe.Type == errorType
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation, ErrorTypeAttachmentFetch:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return requestID
	}
	return ""
}

type requestIDContextKey struct{}

// WithRequestID stores the request id for error construction downstream.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}
