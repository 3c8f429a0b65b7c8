package handlers

import (
	models "Risker/models/postgres"
	"Risker/services/game"
	"Risker/services/postgres"
	"Risker/services/redis"
	ws_types "Risker/services/ws/types"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

/*
 * 'Dispatcher' turns decoded websocket frames into lobby operations. It owns
 * the ordering rule for every mutation: the durable row is written first,
 * the in-memory registry mutates after, and a registry-side failure
 * compensates the durable write. The registry lock is never held while a
 * Postgres or Redis call is in flight.
 */
type Dispatcher struct {
	Store    *postgres.Store
	Registry *game.State
	Router   *ws_types.Router
	Redis    *redis.RedisClient // optional; nil disables chat history and snapshots
}

func NewDispatcher(store *postgres.Store, registry *game.State, router *ws_types.Router, redisClient *redis.RedisClient) *Dispatcher {
	return &Dispatcher{
		Store:    store,
		Registry: registry,
		Router:   router,
		Redis:    redisClient,
	}
}

// Dispatch handles one inbound frame and returns the response to send back
// on the same connection. Every failure path produces an error object; none
// of them closes the connection.
func (d *Dispatcher) Dispatch(ctx context.Context, conn *ws_types.Conn, raw []byte) interface{} {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errorResponse("malformed JSON message")
	}

	d.appendAudit(ctx, conn, env, raw)

	switch env.Type {
	case "lobby":
		switch env.Action {
		case "create":
			return d.handleCreateLobby(ctx, raw)
		case "join":
			return d.handleJoinLobby(ctx, conn, raw)
		case "leave":
			return d.handleLeaveLobby(ctx, raw)
		case "list":
			return d.handleListLobbies(ctx)
		default:
			return errorResponse("unknown lobby action")
		}
	case "chat":
		if env.Action == "history" {
			return d.handleChatHistory(raw)
		}
		return d.handleChat(raw)
	default:
		return errorResponse("unknown message type")
	}
}

// HandleDisconnect releases everything a closed connection was holding: its
// capacity slot in the registry, the durable membership edge, and the router
// binding. Called from the read loop's teardown.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, conn *ws_types.Conn) {
	playerID := conn.PlayerID
	if playerID == "" {
		return
	}
	log.Printf("[DISCONNECT] releasing state for player %s", playerID)

	lobbyID, err := d.Registry.LeaveSession(playerID)
	if err == nil {
		if err := d.Store.RemovePlayerFromLobby(ctx, lobbyID, playerID); err != nil {
			log.Printf("[DISCONNECT-ERROR] removing membership edge for %s: %v", playerID, err)
		}
		d.saveSnapshot(lobbyID)
	}
	d.Router.Unregister(playerID, conn)
}

// appendAudit records the inbound frame in the commands table. Audit is
// best-effort: a failed insert is logged and the request proceeds.
func (d *Dispatcher) appendAudit(ctx context.Context, conn *ws_types.Conn, env envelope, raw []byte) {
	clientID := conn.PlayerID
	if clientID == "" {
		clientID = conn.ID
	}
	cmd := models.Command{
		ClientID:    clientID,
		MessageType: env.Type,
		Action:      env.Action,
		Payload:     datatypes.JSON(raw),
		Timestamp:   time.Now(),
	}
	if err := d.Store.AppendCommand(ctx, &cmd); err != nil {
		log.Printf("[AUDIT-ERROR] recording %s/%s command: %v", env.Type, env.Action, err)
	}
}

// saveSnapshot mirrors the live lobby view into Redis, when Redis is wired.
func (d *Dispatcher) saveSnapshot(lobbyID string) {
	if d.Redis == nil {
		return
	}
	view, ok := d.Registry.View(lobbyID)
	if !ok {
		return
	}
	snap := redisSnapshotFromView(view)
	if err := d.Redis.SaveLobbySnapshot(snap); err != nil {
		log.Printf("[REDIS-ERROR] saving snapshot for lobby %s: %v", lobbyID, err)
	}
}

func errorResponse(message string) gin.H {
	return gin.H{"type": "error", "message": message}
}
