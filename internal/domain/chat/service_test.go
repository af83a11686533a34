package chat_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pirizgpt/internal/domain/chat"
)

// memoryRepo is an in-memory TurnRepository for service tests.
type memoryRepo struct {
	mu         sync.Mutex
	nextID     uint
	turns      []chat.Turn
	appendErr  error
	sessions   []chat.SessionSummary
	lastLimit  int
	sessionErr error
}

func (r *memoryRepo) Append(_ context.Context, sessionID string, role chat.Role, message string) (*chat.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	r.nextID++
	turn := chat.Turn{
		ID:        r.nextID,
		SessionID: sessionID,
		Role:      role,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	r.turns = append(r.turns, turn)
	return &turn, nil
}

func (r *memoryRepo) ListBySession(_ context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var result []chat.Turn
	for _, turn := range r.turns {
		if turn.SessionID == sessionID {
			result = append(result, turn)
		}
	}
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (r *memoryRepo) ListSessions(_ context.Context, limit int) ([]chat.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	if r.sessionErr != nil {
		return nil, r.sessionErr
	}
	return r.sessions, nil
}

func (r *memoryRepo) ClearSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []chat.Turn
	for _, turn := range r.turns {
		if turn.SessionID != sessionID {
			kept = append(kept, turn)
		}
	}
	r.turns = kept
	return nil
}

func (r *memoryRepo) storedTurns() []chat.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.Turn(nil), r.turns...)
}

// stubGateway is a canned CompletionGateway.
type stubGateway struct {
	completeText string
	completeErr  error
	chunks       []string
	streamErr    error // emitted after chunks
	openErr      error // fails CompleteStream before any event
}

func (g *stubGateway) Complete(context.Context, string) (string, error) {
	return g.completeText, g.completeErr
}

func (g *stubGateway) CompleteStream(context.Context, string) (<-chan chat.StreamEvent, error) {
	if g.openErr != nil {
		return nil, g.openErr
	}
	events := make(chan chat.StreamEvent)
	go func() {
		defer close(events)
		for _, chunk := range g.chunks {
			events <- chat.StreamEvent{Text: chunk}
		}
		if g.streamErr != nil {
			events <- chat.StreamEvent{Err: g.streamErr}
			return
		}
		events <- chat.StreamEvent{Done: true}
	}()
	return events, nil
}

func newTestService(repo *memoryRepo, gateway *stubGateway) *chat.ChatService {
	return chat.NewChatService(repo, gateway, zerolog.Nop())
}

func collectEvents(t *testing.T, events <-chan chat.StreamEvent) []chat.StreamEvent {
	t.Helper()
	var collected []chat.StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestSendMessage_PersistsBothTurns(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{completeText: "hello"})

	response, err := service.SendMessage(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", response)

	turns := repo.storedTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, "hi", turns[0].Message)
	assert.Equal(t, chat.RoleBot, turns[1].Role)
	assert.Equal(t, "hello", turns[1].Message)
	assert.Equal(t, "s1", turns[0].SessionID)
}

func TestSendMessage_GatewayFailure(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{completeErr: errors.New("upstream down")})

	_, err := service.SendMessage(context.Background(), "s1", "hi")
	require.Error(t, err)

	// The user turn was already persisted before the gateway call.
	turns := repo.storedTurns()
	require.Len(t, turns, 1)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
}

func TestSendMessage_SwallowsStorageFailure(t *testing.T) {
	repo := &memoryRepo{appendErr: errors.New("disk full")}
	service := newTestService(repo, &stubGateway{completeText: "still works"})

	response, err := service.SendMessage(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "still works", response)
	assert.Empty(t, repo.storedTurns())
}

func TestSendMessage_DefaultsSession(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{completeText: "ok"})

	_, err := service.SendMessage(context.Background(), "", "hi")
	require.NoError(t, err)

	turns := repo.storedTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.DefaultSessionID, turns[0].SessionID)
}

func TestStreamMessage_ChunksConcatenateToPersistedTurn(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{chunks: []string{"Hel", "lo ", "there"}})

	events := collectEvents(t, service.StreamMessage(context.Background(), "s1", "hi"))

	require.Len(t, events, 4)
	var streamed strings.Builder
	for _, ev := range events[:3] {
		streamed.WriteString(ev.Text)
	}
	assert.True(t, events[3].Done)

	turns := repo.storedTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleBot, turns[1].Role)
	assert.Equal(t, "Hello there", turns[1].Message)
	assert.Equal(t, streamed.String(), turns[1].Message)
}

func TestStreamMessage_MidStreamFailurePersistsPartial(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{
		chunks:    []string{"partial "},
		streamErr: errors.New("connection reset"),
	})

	events := collectEvents(t, service.StreamMessage(context.Background(), "s1", "hi"))

	require.Len(t, events, 2)
	assert.Equal(t, "partial ", events[0].Text)
	require.Error(t, events[1].Err)

	turns := repo.storedTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, "partial ", turns[1].Message)
}

func TestStreamMessage_OpenFailurePersistsEmptyBotTurn(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{openErr: errors.New("bad credentials")})

	events := collectEvents(t, service.StreamMessage(context.Background(), "s1", "hi"))

	require.Len(t, events, 1)
	require.Error(t, events[0].Err)

	turns := repo.storedTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleBot, turns[1].Role)
	assert.Equal(t, "", turns[1].Message)
}

func TestHistory_AppliesDefaultLimit(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{})

	_, err := service.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Equal(t, chat.DefaultListLimit, repo.lastLimit)
}

func TestSessions_AppliesTitleRules(t *testing.T) {
	repo := &memoryRepo{
		sessions: []chat.SessionSummary{
			{ID: "s1", Title: "short greeting"},
			{ID: "s2", Title: strings.Repeat("y", 70)},
			{ID: "s3", Title: ""},
		},
	}
	service := newTestService(repo, &stubGateway{})

	sessions, err := service.Sessions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "short greeting", sessions[0].Title)
	assert.Equal(t, strings.Repeat("y", 50)+"...", sessions[1].Title)
	assert.Equal(t, chat.UntitledSessionTitle, sessions[2].Title)
}

func TestClearSession(t *testing.T) {
	repo := &memoryRepo{}
	service := newTestService(repo, &stubGateway{completeText: "ok"})

	_, err := service.SendMessage(context.Background(), "s1", "hi")
	require.NoError(t, err)
	require.NotEmpty(t, repo.storedTurns())

	require.NoError(t, service.ClearSession(context.Background(), "s1"))
	assert.Empty(t, repo.storedTurns())

	// Clearing again is a no-op.
	require.NoError(t, service.ClearSession(context.Background(), "s1"))
}
