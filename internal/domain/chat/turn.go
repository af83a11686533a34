package chat

import (
	"context"
	"time"
)

// Role identifies the author of a turn. Only two values are ever produced.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

const (
	// DefaultSessionID groups turns from callers that never pick a session.
	DefaultSessionID = "default"
	// DefaultListLimit caps history and session listings when the caller
	// does not specify a limit.
	DefaultListLimit = 50
)

// Turn is one stored message within a session. Turns are immutable once
// written and are only removed in bulk by clearing their session.
type Turn struct {
	ID        uint
	SessionID string
	Role      Role
	Message   string
	Timestamp time.Time
}

// SessionSummary is the derived read view of one session: its most recent
// activity and a display title computed from its turns.
type SessionSummary struct {
	ID              string
	LastMessageTime time.Time
	Title           string
}

// TurnRepository is the persistent append-only log of chat turns.
type TurnRepository interface {
	// Append inserts a turn, assigning its id and timestamp.
	Append(ctx context.Context, sessionID string, role Role, message string) (*Turn, error)
	// ListBySession returns the most recent limit turns of a session in
	// chronological (oldest-first) order.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	// ListSessions returns per-session summaries ordered by most recent
	// activity. The Title field carries the raw first user message; callers
	// apply display rules.
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	// ClearSession deletes every turn of a session. Clearing an unknown or
	// empty session is a no-op.
	ClearSession(ctx context.Context, sessionID string) error
}
