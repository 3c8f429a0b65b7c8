package types

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Outbound buffer per connection. A client that stops reading loses
// messages instead of stalling the broadcaster.
const SendBuffer = 16

var (
	ErrNotConnected = errors.New("no connection bound for player")
	ErrConnClosed   = errors.New("connection closed")
	ErrBufferFull   = errors.New("connection send buffer full")
)

// Conn wraps one websocket connection. The write pump is the only goroutine
// that touches WS for writes; everyone else goes through Enqueue.
type Conn struct {
	ID       string // connection id assigned at upgrade time
	PlayerID string // player bound via lobby.join; empty until then
	WS       *websocket.Conn
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   id,
		WS:   ws,
		Send: make(chan []byte, SendBuffer),
	}
}

// Enqueue hands a frame to the write pump without blocking. Delivery to a
// closed or backed-up connection fails here and the caller decides whether
// that matters.
func (c *Conn) Enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close shuts the outbound channel exactly once. Safe to call from both the
// read loop teardown and a failed write pump.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Router is the bidirectional map between player identity and an open
// connection. It is used only for delivery, never for authority over lobby
// state.
type Router struct {
	mu sync.RWMutex
	// Map to track player id -> live connection
	playerConns map[string]*Conn
}

func NewRouter() *Router {
	return &Router{
		playerConns: make(map[string]*Conn),
	}
}

// Register binds a connection to a player id. A rebind replaces the old
// entry, last-write-wins; the stale connection keeps draining until its own
// teardown runs.
func (r *Router) Register(playerID string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerConns[playerID] = conn
}

// Unregister drops the binding for a player id. Unbinding an unknown id is
// a no-op. When conn is non-nil only that exact connection is removed, so a
// reconnect's fresh binding survives the old socket's teardown.
func (r *Router) Unregister(playerID string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn != nil {
		if bound, ok := r.playerConns[playerID]; ok && bound != conn {
			return
		}
	}
	delete(r.playerConns, playerID)
}

func (r *Router) Get(playerID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.playerConns[playerID]
	return conn, ok
}

// Send delivers one frame to the player's bound connection, if any.
func (r *Router) Send(playerID string, data []byte) error {
	conn, ok := r.Get(playerID)
	if !ok {
		return ErrNotConnected
	}
	return conn.Enqueue(data)
}
