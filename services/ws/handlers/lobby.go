package handlers

import (
	models "Risker/models/postgres"
	"Risker/services/game"
	"Risker/services/postgres"
	ws_types "Risker/services/ws/types"
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handleCreateLobby writes the lobby row, then mirrors it into the registry
// with the same identity. If the insert fails the registry is never touched,
// so no in-memory lobby exists without a backing row.
func (d *Dispatcher) handleCreateLobby(ctx context.Context, raw []byte) interface{} {
	var p createLobbyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorResponse("malformed lobby.create payload")
	}
	if p.Name == "" {
		return errorResponse("lobby name is required")
	}
	if p.MaxCommanders < 0 || p.MaxPawns < 0 {
		return errorResponse("capacity limits must be positive")
	}

	lobby := models.Lobby{
		Name:          p.Name,
		MaxCommanders: p.MaxCommanders,
		MaxPawns:      p.MaxPawns,
	}
	if err := d.Store.CreateLobby(ctx, &lobby); err != nil {
		log.Printf("[LOBBY-ERROR] creating lobby %q: %v", p.Name, err)
		return errorResponse("failed to create lobby")
	}

	// Defaults were applied by the model hook; mirror the row as written.
	d.Registry.CreateSession(lobby.ID, lobby.Name, lobby.MaxCommanders, lobby.MaxPawns, lobby.CreatedAt)
	d.saveSnapshot(lobby.ID)

	view, _ := d.Registry.View(lobby.ID)
	return gin.H{"type": "lobby", "action": "update", "lobby": lobbyPayloadFromView(view)}
}

// handleJoinLobby persists the player row, binds the connection, then runs
// the registry's locked capacity check and finally records the membership
// edge. Any failure after the row insert unwinds everything already done,
// including the player row itself, so a failed join leaves no orphans.
func (d *Dispatcher) handleJoinLobby(ctx context.Context, conn *ws_types.Conn, raw []byte) interface{} {
	var p joinLobbyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorResponse("malformed lobby.join payload")
	}
	if _, err := uuid.Parse(p.LobbyID); err != nil {
		return errorResponse("invalid lobby id")
	}
	if !models.ValidRole(p.Role) {
		return errorResponse("role must be commander or pawn")
	}
	if p.Name == "" {
		return errorResponse("player name is required")
	}
	if _, ok := d.Registry.View(p.LobbyID); !ok {
		return errorResponse("lobby not found")
	}

	player := models.Player{Name: p.Name, Role: p.Role}
	if err := d.Store.CreatePlayer(ctx, &player); err != nil {
		log.Printf("[LOBBY-ERROR] creating player %q: %v", p.Name, err)
		return errorResponse("failed to create player")
	}

	d.Registry.CreatePlayer(player.ID, player.Name, game.Role(player.Role))
	conn.PlayerID = player.ID
	d.Router.Register(player.ID, conn)

	if err := d.Registry.JoinSession(player.ID, p.LobbyID); err != nil {
		d.unwindJoin(ctx, conn, player.ID, false)
		return errorResponse(err.Error())
	}

	if err := d.Store.AddPlayerToLobby(ctx, p.LobbyID, player.ID); err != nil {
		d.unwindJoin(ctx, conn, player.ID, true)
		if errors.Is(err, postgres.ErrDuplicateMembership) {
			return errorResponse("player is already in the lobby")
		}
		log.Printf("[LOBBY-ERROR] recording membership %s->%s: %v", player.ID, p.LobbyID, err)
		return errorResponse("failed to join lobby")
	}

	d.saveSnapshot(p.LobbyID)
	view, _ := d.Registry.View(p.LobbyID)
	return gin.H{"type": "lobby", "action": "update", "lobby": lobbyPayloadFromView(view)}
}

// unwindJoin rolls back a partially completed join: registry membership if
// it was taken, the connection binding, the in-memory player, and the
// durable player row.
func (d *Dispatcher) unwindJoin(ctx context.Context, conn *ws_types.Conn, playerID string, joined bool) {
	if joined {
		if _, err := d.Registry.LeaveSession(playerID); err != nil {
			log.Printf("[LOBBY-ERROR] unwinding registry join for %s: %v", playerID, err)
		}
	}
	d.Router.Unregister(playerID, conn)
	conn.PlayerID = ""
	d.Registry.RemovePlayer(playerID)
	if err := d.Store.DeletePlayer(ctx, playerID); err != nil {
		log.Printf("[LOBBY-ERROR] deleting orphan player row %s: %v", playerID, err)
	}
}

// handleLeaveLobby asks the registry first, because only it knows whether
// the leave changes anything; the durable edge is removed only after a
// meaningful registry-side leave. The ack is idempotent: leaving a lobby
// you are not in still acks.
func (d *Dispatcher) handleLeaveLobby(ctx context.Context, raw []byte) interface{} {
	var p leaveLobbyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorResponse("malformed lobby.leave payload")
	}
	if _, err := uuid.Parse(p.LobbyID); err != nil {
		return errorResponse("invalid lobby id")
	}
	if _, err := uuid.Parse(p.PlayerID); err != nil {
		return errorResponse("invalid player id")
	}

	lobbyID, err := d.Registry.LeaveSession(p.PlayerID)
	if err != nil {
		// Nothing to undo; the ack still goes out
		return gin.H{"type": "lobby", "action": "update", "lobby_id": p.LobbyID}
	}
	if err := d.Store.RemovePlayerFromLobby(ctx, lobbyID, p.PlayerID); err != nil {
		log.Printf("[LOBBY-ERROR] removing membership %s->%s: %v", p.PlayerID, lobbyID, err)
		return errorResponse("failed to leave lobby")
	}
	d.saveSnapshot(lobbyID)
	return gin.H{"type": "lobby", "action": "update", "lobby_id": lobbyID}
}

// handleListLobbies reads the durable store, not the registry: the list is
// the restart-surviving view, and it keeps the read path off the registry
// lock entirely.
func (d *Dispatcher) handleListLobbies(ctx context.Context) interface{} {
	lobbies, err := d.Store.ListLobbies(ctx)
	if err != nil {
		log.Printf("[LOBBY-ERROR] listing lobbies: %v", err)
		return errorResponse("failed to list lobbies")
	}

	payloads := make([]LobbyPayload, 0, len(lobbies))
	for _, lobby := range lobbies {
		players, err := d.Store.GetLobbyPlayers(ctx, lobby.ID)
		if err != nil {
			log.Printf("[LOBBY-ERROR] listing players of %s: %v", lobby.ID, err)
			return errorResponse("failed to list lobbies")
		}
		payload := LobbyPayload{
			ID:            lobby.ID,
			Name:          lobby.Name,
			Commanders:    make([]string, 0),
			Pawns:         make([]string, 0),
			MaxCommanders: lobby.MaxCommanders,
			MaxPawns:      lobby.MaxPawns,
			Status:        lobby.Status,
			CreatedAt:     lobby.CreatedAt,
		}
		for _, player := range players {
			if player.Role == models.RoleCommander {
				payload.Commanders = append(payload.Commanders, player.ID)
			} else {
				payload.Pawns = append(payload.Pawns, player.ID)
			}
		}
		payloads = append(payloads, payload)
	}
	return gin.H{"type": "lobby", "action": "list", "lobbies": payloads}
}
