// Package responses provides the JSON envelopes returned by the HTTP surface.
package responses

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"pirizgpt/internal/infrastructure/logger"
	"pirizgpt/internal/utils/platformerrors"
)

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatResponse carries the completion text of a non-streaming send.
type ChatResponse struct {
	Response string `json:"response"`
}

// HistoryEntry is one turn in a history listing.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse wraps a chronological turn listing.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// SessionEntry is one session in the session directory listing.
type SessionEntry struct {
	ID              string    `json:"id"`
	LastMessageTime time.Time `json:"last_message_time"`
	Title           string    `json:"title"`
}

// SessionsResponse wraps the session directory listing.
type SessionsResponse struct {
	Sessions []SessionEntry `json:"sessions"`
}

// ClearResponse confirms a session clear.
type ClearResponse struct {
	Success bool `json:"success"`
}

// HandleError logs the underlying failure with full context and returns a
// generic, non-leaking message with the status mapped from the error type.
func HandleError(c *gin.Context, err error, publicMessage string) {
	log := logger.GetLogger()

	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		platformerrors.LogError(log, platformErr)
	} else {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.JSON(platformerrors.StatusFor(err), ErrorResponse{Error: publicMessage})
}
