package chat

import "github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"

// User-visible failure messages, keyed by error category. Raw diagnostics are
// logged, never shown.
const (
	msgAttachment = "Your image could not be stored. Check the attachment and try again."
	msgFetch      = "The attached image could not be retrieved."
	msgUpstream   = "The assistant is temporarily unavailable. Please try again."
	msgValidation = "Please enter a message or attach an image."
	msgSending    = "A reply is already on its way."
	msgGeneric    = "Something went wrong. Please try again."
)

// UserMessage maps a pipeline error to the short, human-readable string shown
// in the interface.
func UserMessage(err error) string {
	pe := platformerrors.GetPlatformError(err)
	if pe == nil {
		return msgGeneric
	}
	switch pe.Type {
	case platformerrors.ErrorTypeAttachmentStore:
		return msgAttachment
	case platformerrors.ErrorTypeAttachmentFetch:
		return msgFetch
	case platformerrors.ErrorTypeUpstream, platformerrors.ErrorTypeNetwork:
		return msgUpstream
	case platformerrors.ErrorTypeValidation:
		return msgValidation
	case platformerrors.ErrorTypeConflict:
		return msgSending
	default:
		return msgGeneric
	}
}
