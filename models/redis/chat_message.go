package redis

import "time"

// ChatMessage represents one message in a lobby's chat history
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
