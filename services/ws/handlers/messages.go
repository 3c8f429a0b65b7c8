package handlers

import (
	redis_models "Risker/models/redis"
	"Risker/services/game"
	"time"
)

// envelope carries the two routing tags every request starts with. The
// per-action payload is decoded separately so each variant is validated
// before anything mutates.
type envelope struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type createLobbyPayload struct {
	Name          string `json:"name"`
	MaxCommanders int    `json:"maxCommanders"`
	MaxPawns      int    `json:"maxPawns"`
}

type joinLobbyPayload struct {
	LobbyID string `json:"lobby_id"`
	Role    string `json:"role"`
	Name    string `json:"name"`
}

type leaveLobbyPayload struct {
	LobbyID  string `json:"lobby_id"`
	PlayerID string `json:"player_id"`
}

type chatPayload struct {
	LobbyID string `json:"lobby_id"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type chatHistoryPayload struct {
	LobbyID string `json:"lobby_id"`
}

// LobbyPayload is the full lobby view sent back on create and join.
type LobbyPayload struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Commanders    []string  `json:"commanders"`
	Pawns         []string  `json:"pawns"`
	MaxCommanders int       `json:"maxCommanders"`
	MaxPawns      int       `json:"maxPawns"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func lobbyPayloadFromView(view game.LobbyView) LobbyPayload {
	return LobbyPayload{
		ID:            view.ID,
		Name:          view.Name,
		Commanders:    view.Commanders,
		Pawns:         view.Pawns,
		MaxCommanders: view.MaxCommanders,
		MaxPawns:      view.MaxPawns,
		Status:        view.Status,
		CreatedAt:     view.CreatedAt,
	}
}

func redisSnapshotFromView(view game.LobbyView) *redis_models.LobbySnapshot {
	return &redis_models.LobbySnapshot{
		ID:            view.ID,
		Name:          view.Name,
		Commanders:    view.Commanders,
		Pawns:         view.Pawns,
		MaxCommanders: view.MaxCommanders,
		MaxPawns:      view.MaxPawns,
		Status:        view.Status,
		CreatedAt:     view.CreatedAt,
	}
}
