package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Player roles. A player holds exactly one role for its whole lifetime.
const (
	RoleCommander = "commander"
	RolePawn      = "pawn"
)

/*
 * 'Player' is the durable row backing one player identity. Rows are created
 * on lobby.join and identities are never reused.
 */
type Player struct {
	ID        string         `gorm:"primaryKey;size:36;not null"`
	Name      string         `gorm:"size:100;not null"`
	Role      string         `gorm:"size:20;not null"`
	CreatedAt time.Time      ``
	Data      datatypes.JSON `gorm:"type:jsonb"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ValidRole reports whether a wire-level role string is one we accept.
func ValidRole(role string) bool {
	return role == RoleCommander || role == RolePawn
}
