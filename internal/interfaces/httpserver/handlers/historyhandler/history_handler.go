package historyhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pirizgpt/internal/domain/chat"
	chatrequests "pirizgpt/internal/interfaces/httpserver/requests/chat"
	"pirizgpt/internal/interfaces/httpserver/responses"
	"pirizgpt/internal/utils/functional"
)

// HistoryHandler handles the read and clear endpoints of the turn log.
type HistoryHandler struct {
	service *chat.ChatService
	logger  zerolog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *chat.ChatService, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// GetHistory returns the most recent turns of one session, oldest first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	var query chatrequests.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	turns, err := h.service.History(c.Request.Context(), query.SessionID, query.Limit)
	if err != nil {
		responses.HandleError(c, err, "Failed to fetch history")
		return
	}

	history := functional.Map(turns, func(turn chat.Turn) responses.HistoryEntry {
		return responses.HistoryEntry{
			Role:      string(turn.Role),
			Message:   turn.Message,
			Timestamp: turn.Timestamp,
		}
	})

	c.JSON(http.StatusOK, responses.HistoryResponse{History: history})
}

// GetSessions returns the session directory, newest activity first.
func (h *HistoryHandler) GetSessions(c *gin.Context) {
	var query chatrequests.SessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	summaries, err := h.service.Sessions(c.Request.Context(), query.Limit)
	if err != nil {
		responses.HandleError(c, err, "Failed to fetch sessions")
		return
	}

	sessions := functional.Map(summaries, func(summary chat.SessionSummary) responses.SessionEntry {
		return responses.SessionEntry{
			ID:              summary.ID,
			LastMessageTime: summary.LastMessageTime,
			Title:           summary.Title,
		}
	})

	c.JSON(http.StatusOK, responses.SessionsResponse{Sessions: sessions})
}

// PostClear deletes every turn of one session. An absent or empty body
// clears the default session.
func (h *HistoryHandler) PostClear(c *gin.Context) {
	var request chatrequests.ClearRequest
	// Body is optional; binding failures fall back to the default session.
	_ = c.ShouldBindJSON(&request)

	if err := h.service.ClearSession(c.Request.Context(), request.SessionID); err != nil {
		responses.HandleError(c, err, "Failed to clear history")
		return
	}

	c.JSON(http.StatusOK, responses.ClearResponse{Success: true})
}
