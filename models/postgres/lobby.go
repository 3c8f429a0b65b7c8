package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lobby statuses as reported to clients.
const (
	LobbyStatusWaiting    = "waiting"
	LobbyStatusInProgress = "in_progress"
)

// Default capacity limits applied when a create request omits them.
const (
	DefaultMaxCommanders = 2
	DefaultMaxPawns      = 4
)

/*
 * 'Lobby' is the durable row backing one game lobby. The in-memory registry
 * is the authority while the process runs; this row is what survives a
 * restart.
 */
type Lobby struct {
	ID            string         `gorm:"primaryKey;size:36;not null"`
	Name          string         `gorm:"size:100;not null"`
	MaxCommanders int            `gorm:"not null"`
	MaxPawns      int            `gorm:"not null"`
	Status        string         `gorm:"size:20;not null;index:idx_lobbies_status"`
	CreatedAt     time.Time      ``
	Data          datatypes.JSON `gorm:"type:jsonb"`

	// Relationship with the players currently inside the lobby
	LobbyPlayers []*LobbyPlayer `gorm:"foreignKey:LobbyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate fills in the identity and defaults so callers can insert a
// Lobby with only a name set.
func (l *Lobby) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.MaxCommanders == 0 {
		l.MaxCommanders = DefaultMaxCommanders
	}
	if l.MaxPawns == 0 {
		l.MaxPawns = DefaultMaxPawns
	}
	if l.Status == "" {
		l.Status = LobbyStatusWaiting
	}
	return nil
}
