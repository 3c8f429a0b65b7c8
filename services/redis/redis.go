package redis

import (
	redis_models "Risker/models/redis"
	redis_utils "Risker/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// How much chat history each lobby keeps, and for how long.
const (
	chatHistoryLimit = 50
	keyTTL           = 24 * time.Hour
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(addr string, db int) *RedisClient {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// AppendChatMessage pushes a message onto a lobby's chat history, trimming
// the list so it never grows past chatHistoryLimit.
// Key format: "chat_history:{lobbyID}"
func (rc *RedisClient) AppendChatMessage(lobbyID string, msg *redis_models.ChatMessage) error {
	key := redis_utils.FormatChatHistoryKey(lobbyID)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling chat message: %v", err)
	}

	pipe := rc.client.Pipeline()
	pipe.LPush(rc.ctx, key, data)
	pipe.LTrim(rc.ctx, key, 0, chatHistoryLimit-1)
	pipe.Expire(rc.ctx, key, keyTTL)
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error appending chat message: %v", err)
	}
	return nil
}

// GetChatHistory returns a lobby's recent messages, oldest first.
// Key format: "chat_history:{lobbyID}"
func (rc *RedisClient) GetChatHistory(lobbyID string) ([]redis_models.ChatMessage, error) {
	key := redis_utils.FormatChatHistoryKey(lobbyID)
	raw, err := rc.client.LRange(rc.ctx, key, 0, chatHistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting chat history: %v", err)
	}

	// LPUSH stores newest-first; walk backwards to restore send order
	messages := make([]redis_models.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, fmt.Errorf("error unmarshaling chat message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SaveLobbySnapshot stores the live lobby view in Redis.
// Key format: "lobby:{id}"
// TTL: 24 hours
func (rc *RedisClient) SaveLobbySnapshot(snap *redis_models.LobbySnapshot) error {
	key := redis_utils.FormatLobbyKey(snap.ID)
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("error marshaling lobby snapshot: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, keyTTL).Err()
}

// GetLobbySnapshot retrieves a lobby snapshot from Redis. Returns nil when
// the key does not exist.
func (rc *RedisClient) GetLobbySnapshot(lobbyID string) (*redis_models.LobbySnapshot, error) {
	key := redis_utils.FormatLobbyKey(lobbyID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting lobby snapshot: %v", err)
	}

	var snap redis_models.LobbySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("error unmarshaling lobby snapshot: %v", err)
	}
	return &snap, nil
}

// DeleteLobbyKeys removes everything Redis holds for a lobby.
func (rc *RedisClient) DeleteLobbyKeys(lobbyID string) error {
	pipe := rc.client.Pipeline()
	pipe.Del(rc.ctx, redis_utils.FormatLobbyKey(lobbyID))
	pipe.Del(rc.ctx, redis_utils.FormatChatHistoryKey(lobbyID))
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error deleting lobby keys: %v", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
