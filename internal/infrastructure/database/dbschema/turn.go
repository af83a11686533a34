package dbschema

import (
	"time"

	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Turn{})
}

// Turn is the database schema for one conversation turn.
type Turn struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"type:text;index;not null"`
	Role      string    `gorm:"type:text;not null"`
	Message   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (Turn) TableName() string {
	return "conversations"
}

// NewSchemaTurn creates a database row from a domain turn.
func NewSchemaTurn(t *chat.Turn) *Turn {
	return &Turn{
		ID:        t.ID,
		SessionID: t.SessionID,
		Role:      string(t.Role),
		Message:   t.Message,
		Timestamp: t.Timestamp,
	}
}

// EtoD converts the database row to a domain turn.
func (t *Turn) EtoD() *chat.Turn {
	return &chat.Turn{
		ID:        t.ID,
		SessionID: t.SessionID,
		Role:      chat.Role(t.Role),
		Message:   t.Message,
		Timestamp: t.Timestamp,
	}
}
