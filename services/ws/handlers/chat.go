package handlers

import (
	redis_models "Risker/models/redis"
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handleChat fans a message out to every member of the lobby. Delivery is
// best-effort per recipient: a dead or backed-up connection is logged and
// skipped, and the sender still gets the sent ack.
func (d *Dispatcher) handleChat(raw []byte) interface{} {
	var p chatPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorResponse("malformed chat payload")
	}
	if _, err := uuid.Parse(p.LobbyID); err != nil {
		return errorResponse("invalid lobby id")
	}
	if p.Message == "" {
		return errorResponse("message is required")
	}

	members, ok := d.Registry.MemberIDs(p.LobbyID)
	if !ok {
		return errorResponse("lobby not found")
	}

	if d.Redis != nil {
		msg := redis_models.ChatMessage{
			Sender:    p.Sender,
			Message:   p.Message,
			Timestamp: time.Now(),
		}
		if err := d.Redis.AppendChatMessage(p.LobbyID, &msg); err != nil {
			log.Printf("[CHAT-ERROR] recording history for lobby %s: %v", p.LobbyID, err)
		}
	}

	broadcast, err := json.Marshal(gin.H{
		"type":     "chat",
		"lobby_id": p.LobbyID,
		"sender":   p.Sender,
		"message":  p.Message,
	})
	if err != nil {
		log.Printf("[CHAT-ERROR] marshaling broadcast: %v", err)
		return errorResponse("failed to send message")
	}

	for _, memberID := range members {
		if err := d.Router.Send(memberID, broadcast); err != nil {
			log.Printf("[CHAT] skipping member %s in lobby %s: %v", memberID, p.LobbyID, err)
		}
	}

	return gin.H{"type": "chat", "status": "sent"}
}

// handleChatHistory returns the lobby's recent messages from Redis, oldest
// first.
func (d *Dispatcher) handleChatHistory(raw []byte) interface{} {
	var p chatHistoryPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorResponse("malformed chat.history payload")
	}
	if _, err := uuid.Parse(p.LobbyID); err != nil {
		return errorResponse("invalid lobby id")
	}
	if _, ok := d.Registry.View(p.LobbyID); !ok {
		return errorResponse("lobby not found")
	}
	if d.Redis == nil {
		return errorResponse("chat history is not available")
	}

	messages, err := d.Redis.GetChatHistory(p.LobbyID)
	if err != nil {
		log.Printf("[CHAT-ERROR] reading history for lobby %s: %v", p.LobbyID, err)
		return errorResponse("failed to read chat history")
	}
	return gin.H{
		"type":     "chat",
		"action":   "history",
		"lobby_id": p.LobbyID,
		"messages": messages,
	}
}
