package history

import (
	"github.com/gin-gonic/gin"

	"pirizgpt/internal/interfaces/httpserver/handlers/historyhandler"
)

// HistoryRoute exposes the history, session listing and clear endpoints.
type HistoryRoute struct {
	historyHandler *historyhandler.HistoryHandler
}

func NewHistoryRoute(historyHandler *historyhandler.HistoryHandler) *HistoryRoute {
	return &HistoryRoute{
		historyHandler: historyHandler,
	}
}

func (historyRoute *HistoryRoute) RegisterRouter(router gin.IRouter) {
	historyRouter := router.Group("/history")
	historyRouter.GET("", historyRoute.historyHandler.GetHistory)
	historyRouter.GET("/sessions", historyRoute.historyHandler.GetSessions)
	historyRouter.POST("/clear", historyRoute.historyHandler.PostClear)
}
