package postgres

import "time"

/*
 * 'LobbyPlayer' is the membership edge between a lobby and a player.
 * The composite primary key makes a rejoin of the same pair a constraint
 * violation instead of a silent overwrite.
 */
type LobbyPlayer struct {
	// NOTE: composite primary key definition
	LobbyID  string    `gorm:"primaryKey;size:36;not null"`
	PlayerID string    `gorm:"primaryKey;size:36;not null;index"`
	JoinedAt time.Time `gorm:"not null"`

	// Relationship with the lobby and the player
	Lobby  Lobby  `gorm:"foreignKey:LobbyID"`
	Player Player `gorm:"foreignKey:PlayerID"`
}
