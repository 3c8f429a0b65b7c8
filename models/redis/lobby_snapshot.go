package redis

import "time"

// LobbySnapshot mirrors the live lobby view into Redis so dashboards and
// other processes can read it without touching PostgreSQL. Purely
// best-effort; the in-memory registry stays authoritative.
type LobbySnapshot struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Commanders    []string  `json:"commanders"`
	Pawns         []string  `json:"pawns"`
	MaxCommanders int       `json:"max_commanders"`
	MaxPawns      int       `json:"max_pawns"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
