package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the conversation routes under /v1 and the answer
// endpoint at the root, where existing clients expect it.
func (r *Routes) Register(router gin.IRouter) {
	router.POST("/answer", r.handlers.Answer.Answer)

	group := router.Group("/v1")
	group.POST("/conversations", r.handlers.Conversation.Create)
	group.GET("/conversations", r.handlers.Conversation.List)
	group.GET("/conversations/:id/turns", r.handlers.Conversation.Turns)
	group.DELETE("/conversations/:id", r.handlers.Conversation.Delete)
	group.POST("/conversations/:id/send", r.handlers.Conversation.Send)
}
