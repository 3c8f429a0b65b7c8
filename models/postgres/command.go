package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'Command' is one row of the append-only audit trail of inbound websocket
 * messages. Nothing in the server reads it back; a drain/consumer is
 * expected to live outside this process.
 */
type Command struct {
	ID          string         `gorm:"primaryKey;size:36;not null"`
	ClientID    string         `gorm:"size:64;not null;index:idx_commands_client"`
	MessageType string         `gorm:"size:20;not null"`
	Action      string         `gorm:"size:20"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	Timestamp   time.Time      `gorm:"not null"`
	Processed   bool           `gorm:"not null"`
}

func (c *Command) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
