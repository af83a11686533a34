package chathandler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/metrics"
	"pirizgpt/internal/interfaces/httpserver/middlewares"
	chatrequests "pirizgpt/internal/interfaces/httpserver/requests/chat"
	"pirizgpt/internal/interfaces/httpserver/responses"
)

// SSE event payloads for the streaming endpoint. Each event is a single
// JSON object: a text fragment, a terminal done marker or a terminal error.
type streamTextEvent struct {
	Text string `json:"text"`
}

type streamDoneEvent struct {
	Done bool `json:"done"`
}

type streamErrorEvent struct {
	Error string `json:"error"`
}

// ChatHandler handles the send-message endpoints.
type ChatHandler struct {
	service *chat.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *chat.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// PostChat handles the non-streaming send-message endpoint: it persists the
// user turn, requests a completion, persists the bot turn and returns the
// completion text as one JSON body.
func (h *ChatHandler) PostChat(c *gin.Context) {
	request, ok := h.bindChatRequest(c)
	if !ok {
		return
	}

	response, err := h.service.SendMessage(c.Request.Context(), request.SessionID, request.Message)
	if err != nil {
		metrics.RecordCompletionError("chat")
		responses.HandleError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, responses.ChatResponse{Response: response})
}

// PostChatStream handles the streaming send-message endpoint. Validation
// failures are still plain JSON errors; once the event stream is open every
// outcome, including upstream failure, is delivered as an in-stream event
// because the headers are already committed.
func (h *ChatHandler) PostChatStream(c *gin.Context) {
	request, ok := h.bindChatRequest(c)
	if !ok {
		return
	}

	middlewares.PrepareSSE(c)

	events := h.service.StreamMessage(c.Request.Context(), request.SessionID, request.Message)

	// Drain the channel even when a write fails so the service goroutine
	// always finishes and persists the accumulated bot turn.
	writeBroken := false
	for ev := range events {
		var payload any
		switch {
		case ev.Err != nil:
			metrics.RecordCompletionError("stream")
			h.logger.Error().Err(ev.Err).Msg("streaming completion error")
			payload = streamErrorEvent{Error: ev.Err.Error()}
		case ev.Done:
			payload = streamDoneEvent{Done: true}
		default:
			payload = streamTextEvent{Text: ev.Text}
		}

		if writeBroken {
			continue
		}
		if err := h.writeSSEData(c, payload); err != nil {
			h.logger.Warn().Err(err).Msg("client stopped reading event stream")
			writeBroken = true
		}
	}
}

// bindChatRequest parses the shared request body of both send endpoints and
// rejects a missing message before any side effect.
func (h *ChatHandler) bindChatRequest(c *gin.Context) (chatrequests.ChatRequest, bool) {
	var request chatrequests.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "Invalid request body"})
		return request, false
	}
	if request.Message == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "Message is required"})
		return request, false
	}
	if request.SessionID == "" {
		request.SessionID = chat.DefaultSessionID
	}
	return request, true
}

// writeSSEData writes one event as an SSE data frame and flushes it.
func (h *ChatHandler) writeSSEData(c *gin.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := c.Writer.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := c.Writer.Write(data); err != nil {
		return err
	}
	if _, err := c.Writer.Write([]byte("\n\n")); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
