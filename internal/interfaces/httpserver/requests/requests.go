package requests

import "github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"

// AnswerRequest is the body of POST /answer.
type AnswerRequest struct {
	Messages []chat.WindowTurn `json:"messages"`
}

// CreateConversationRequest is the body of POST /v1/conversations.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// SendRequest is the body of POST /v1/conversations/:id/send. ImageData is
// the attachment payload, standard base64.
type SendRequest struct {
	Text      string `json:"text"`
	ImageData string `json:"image_data"`
	ImageName string `json:"image_name"`
}
