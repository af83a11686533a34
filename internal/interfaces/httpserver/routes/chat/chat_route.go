package chat

import (
	"github.com/gin-gonic/gin"

	"pirizgpt/internal/interfaces/httpserver/handlers/chathandler"
)

// ChatRoute exposes the send-message endpoints.
type ChatRoute struct {
	chatHandler *chathandler.ChatHandler
}

func NewChatRoute(chatHandler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{
		chatHandler: chatHandler,
	}
}

func (chatRoute *ChatRoute) RegisterRouter(router gin.IRouter) {
	chatRouter := router.Group("/chat")
	chatRouter.POST("", chatRoute.chatHandler.PostChat)
	chatRouter.POST("/stream", chatRoute.chatHandler.PostChatStream)
}
