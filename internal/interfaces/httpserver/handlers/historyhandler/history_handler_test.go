package historyhandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pirizgpt/internal/config"
	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/database"
	"pirizgpt/internal/infrastructure/database/repository/turnrepo"
	"pirizgpt/internal/interfaces/httpserver"
	"pirizgpt/internal/interfaces/httpserver/handlers/chathandler"
	"pirizgpt/internal/interfaces/httpserver/handlers/historyhandler"
	chatroute "pirizgpt/internal/interfaces/httpserver/routes/chat"
	historyroute "pirizgpt/internal/interfaces/httpserver/routes/history"
)

type noopGateway struct{}

func (noopGateway) Complete(context.Context, string) (string, error) {
	return "", nil
}

func (noopGateway) CompleteStream(context.Context, string) (<-chan chat.StreamEvent, error) {
	events := make(chan chat.StreamEvent)
	close(events)
	return events, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, chat.TurnRepository) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migration(db))

	repo := turnrepo.NewTurnGormRepository(db)
	log := zerolog.Nop()
	service := chat.NewChatService(repo, noopGateway{}, log)

	server := httpserver.NewHTTPServer(
		&config.Config{HTTPPort: 8080, StaticDir: t.TempDir()},
		log,
		chatroute.NewChatRoute(chathandler.NewChatHandler(service, log)),
		historyroute.NewHistoryRoute(historyhandler.NewHistoryHandler(service, log)),
	)
	server.RegisterRoutes()
	return server.Engine(), repo
}

func get(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func seed(t *testing.T, repo chat.TurnRepository, sessionID string, pairs ...string) {
	t.Helper()
	for i, message := range pairs {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleBot
		}
		_, err := repo.Append(context.Background(), sessionID, role, message)
		require.NoError(t, err)
	}
}

func TestGetHistory_ReturnsTurnsInOrder(t *testing.T) {
	engine, repo := newTestEngine(t)
	seed(t, repo, "s1", "hi", "hello")

	recorder := get(t, engine, "/history?session_id=s1")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		History []struct {
			Role      string    `json:"role"`
			Message   string    `json:"message"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	assert.Equal(t, "user", body.History[0].Role)
	assert.Equal(t, "hi", body.History[0].Message)
	assert.Equal(t, "bot", body.History[1].Role)
	assert.False(t, body.History[0].Timestamp.IsZero())
}

func TestGetHistory_DefaultsAndLimit(t *testing.T) {
	engine, repo := newTestEngine(t)
	seed(t, repo, chat.DefaultSessionID, "a", "b", "c", "d")

	recorder := get(t, engine, "/history?limit=2")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		History []struct {
			Message string `json:"message"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	assert.Equal(t, "c", body.History[0].Message)
	assert.Equal(t, "d", body.History[1].Message)
}

func TestGetHistory_UnknownSessionIsEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)

	recorder := get(t, engine, "/history?session_id=nope")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"history":[]}`, recorder.Body.String())
}

func TestGetSessions_OrderingAndTitles(t *testing.T) {
	engine, repo := newTestEngine(t)
	seed(t, repo, "first", "an early question", "answer")
	time.Sleep(10 * time.Millisecond)
	seed(t, repo, "second", strings.Repeat("z", 60))

	recorder := get(t, engine, "/history/sessions")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Sessions []struct {
			ID              string    `json:"id"`
			LastMessageTime time.Time `json:"last_message_time"`
			Title           string    `json:"title"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Sessions, 2)

	// Most recent activity first, long titles truncated.
	assert.Equal(t, "second", body.Sessions[0].ID)
	assert.Equal(t, strings.Repeat("z", 50)+"...", body.Sessions[0].Title)
	assert.Equal(t, "first", body.Sessions[1].ID)
	assert.Equal(t, "an early question", body.Sessions[1].Title)
	assert.False(t, body.Sessions[0].LastMessageTime.IsZero())
}

func TestGetSessions_UntitledFallback(t *testing.T) {
	engine, repo := newTestEngine(t)
	_, err := repo.Append(context.Background(), "botonly", chat.RoleBot, "unprompted")
	require.NoError(t, err)

	recorder := get(t, engine, "/history/sessions")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Untitled Chat")
}

func TestPostClear(t *testing.T) {
	engine, repo := newTestEngine(t)
	seed(t, repo, "s1", "hi", "hello")
	seed(t, repo, "s2", "other")

	body, err := json.Marshal(gin.H{"session_id": "s1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/history/clear", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true}`, recorder.Body.String())

	turns, err := repo.ListBySession(context.Background(), "s1", 50)
	require.NoError(t, err)
	assert.Empty(t, turns)

	turns, err = repo.ListBySession(context.Background(), "s2", 50)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestPostClear_NoBodyClearsDefaultSession(t *testing.T) {
	engine, repo := newTestEngine(t)
	seed(t, repo, chat.DefaultSessionID, "hi")

	req := httptest.NewRequest(http.MethodPost, "/history/clear", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true}`, recorder.Body.String())

	turns, err := repo.ListBySession(context.Background(), chat.DefaultSessionID, 50)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
