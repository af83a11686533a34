package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"pirizgpt/internal/utils/platformerrors"
)

// ChatService binds the turn log and the completion gateway into the
// send/stream/history/clear operations. It keeps no state between calls.
//
// Turn persistence failures are logged and swallowed: callers still receive
// the completion even when a turn could not be written. Concurrent senders
// on the same session interleave in insert order; there is no per-session
// serialization.
type ChatService struct {
	repo    TurnRepository
	gateway CompletionGateway
	logger  zerolog.Logger
}

// NewChatService creates a new chat service
func NewChatService(repo TurnRepository, gateway CompletionGateway, logger zerolog.Logger) *ChatService {
	return &ChatService{
		repo:    repo,
		gateway: gateway,
		logger:  logger,
	}
}

// SendMessage persists the user turn, requests a full completion and
// persists the bot turn before returning the completion text.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, message string) (string, error) {
	sessionID = normalizeSessionID(sessionID)

	s.appendTurn(ctx, sessionID, RoleUser, message)

	response, err := s.gateway.Complete(ctx, message)
	if err != nil {
		return "", platformerrors.AsError(platformerrors.LayerDomain, err, "completion failed")
	}

	s.appendTurn(ctx, sessionID, RoleBot, response)
	return response, nil
}

// StreamMessage persists the user turn, opens an incremental completion and
// returns a channel of stream events. Text fragments are forwarded
// unmodified and accumulated; once the source terminates the accumulated
// text is persisted as the bot turn and a terminal Done or Err event is
// emitted. A failure before the first fragment persists an empty bot turn.
func (s *ChatService) StreamMessage(ctx context.Context, sessionID, message string) <-chan StreamEvent {
	sessionID = normalizeSessionID(sessionID)

	s.appendTurn(ctx, sessionID, RoleUser, message)

	events := make(chan StreamEvent)
	go func() {
		defer close(events)

		src, err := s.gateway.CompleteStream(ctx, message)
		if err != nil {
			s.appendTurn(ctx, sessionID, RoleBot, "")
			events <- StreamEvent{Err: platformerrors.AsError(platformerrors.LayerDomain, err, "streaming completion failed")}
			return
		}

		var accumulated strings.Builder
		for ev := range src {
			switch {
			case ev.Err != nil:
				// Persist what the caller actually saw up to the failure.
				s.appendTurn(ctx, sessionID, RoleBot, accumulated.String())
				events <- StreamEvent{Err: platformerrors.AsError(platformerrors.LayerDomain, ev.Err, "streaming completion failed")}
				return
			case ev.Done:
				s.appendTurn(ctx, sessionID, RoleBot, accumulated.String())
				events <- StreamEvent{Done: true}
				return
			default:
				accumulated.WriteString(ev.Text)
				events <- StreamEvent{Text: ev.Text}
			}
		}

		// Source closed without a terminal event; treat as completed.
		s.appendTurn(ctx, sessionID, RoleBot, accumulated.String())
		events <- StreamEvent{Done: true}
	}()

	return events
}

// History returns the most recent limit turns of a session, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	sessionID = normalizeSessionID(sessionID)
	limit = normalizeLimit(limit)

	turns, err := s.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, platformerrors.AsError(platformerrors.LayerDomain, err, "failed to fetch history")
	}
	return turns, nil
}

// Sessions returns the session directory projection with display titles
// applied, ordered by most recent activity.
func (s *ChatService) Sessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	limit = normalizeLimit(limit)

	summaries, err := s.repo.ListSessions(ctx, limit)
	if err != nil {
		return nil, platformerrors.AsError(platformerrors.LayerDomain, err, "failed to fetch sessions")
	}

	for i := range summaries {
		summaries[i].Title = SessionTitle(summaries[i].Title)
	}
	return summaries, nil
}

// ClearSession deletes every turn of a session. Idempotent.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	sessionID = normalizeSessionID(sessionID)

	if err := s.repo.ClearSession(ctx, sessionID); err != nil {
		return platformerrors.AsError(platformerrors.LayerDomain, err, "failed to clear session")
	}
	return nil
}

// appendTurn writes a turn to the log. Storage failures are logged with the
// underlying cause and swallowed; the caller never sees them.
func (s *ChatService) appendTurn(ctx context.Context, sessionID string, role Role, message string) {
	if _, err := s.repo.Append(ctx, sessionID, role, message); err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("role", string(role)).
			Msg("failed to save message")
	}
}

func normalizeSessionID(sessionID string) string {
	if sessionID == "" {
		return DefaultSessionID
	}
	return sessionID
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
