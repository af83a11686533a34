package turnrepo

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/database/dbschema"
	"pirizgpt/internal/infrastructure/metrics"
	"pirizgpt/internal/utils/platformerrors"
)

// sessionQuery computes the session directory projection: one row per
// session with its latest activity and the chronologically first user
// message as the raw title.
const sessionQuery = `
SELECT
    session_id,
    MAX(timestamp) AS last_message_time,
    (SELECT message FROM conversations c2
     WHERE c2.session_id = c1.session_id AND c2.role = 'user'
     ORDER BY c2.id ASC LIMIT 1) AS title
FROM conversations c1
GROUP BY session_id
ORDER BY last_message_time DESC
LIMIT ?`

type TurnGormRepository struct {
	db *gorm.DB
}

var _ chat.TurnRepository = (*TurnGormRepository)(nil)

func NewTurnGormRepository(db *gorm.DB) chat.TurnRepository {
	return &TurnGormRepository{db}
}

// Append implements chat.TurnRepository.
func (repo *TurnGormRepository) Append(ctx context.Context, sessionID string, role chat.Role, message string) (*chat.Turn, error) {
	row := &dbschema.Turn{
		SessionID: sessionID,
		Role:      string(role),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to append turn", err)
	}
	metrics.RecordTurnStored(string(role))
	return row.EtoD(), nil
}

// ListBySession implements chat.TurnRepository. It fetches the most recent
// limit turns and returns them oldest first.
func (repo *TurnGormRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	var rows []dbschema.Turn
	err := repo.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list turns", err)
	}

	// Reverse into chronological order.
	turns := make([]chat.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = *row.EtoD()
	}
	return turns, nil
}

// ListSessions implements chat.TurnRepository.
func (repo *TurnGormRepository) ListSessions(ctx context.Context, limit int) ([]chat.SessionSummary, error) {
	// MAX(timestamp) is an expression column, so sqlite hands it back as
	// text rather than a converted time value.
	var rows []struct {
		SessionID       string
		LastMessageTime string
		Title           sql.NullString
	}
	err := repo.db.WithContext(ctx).Raw(sessionQuery, limit).Scan(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list sessions", err)
	}

	summaries := make([]chat.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, chat.SessionSummary{
			ID:              row.SessionID,
			LastMessageTime: parseStoredTime(row.LastMessageTime),
			Title:           row.Title.String,
		})
	}
	return summaries, nil
}

// storedTimeFormats are the timestamp layouts the sqlite driver produces.
var storedTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseStoredTime(value string) time.Time {
	for _, layout := range storedTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ClearSession implements chat.TurnRepository. Deleting an empty or unknown
// session succeeds with no effect.
func (repo *TurnGormRepository) ClearSession(ctx context.Context, sessionID string) error {
	err := repo.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&dbschema.Turn{}).Error
	if err != nil {
		return platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to clear session", err)
	}
	return nil
}
