package ws

import (
	"Risker/services/game"
	"Risker/services/postgres"
	"Risker/services/redis"
	"Risker/services/ws/handlers"
	ws_types "Risker/services/ws/types"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

/*
 * 'Server' owns the websocket endpoint: it upgrades connections, runs one
 * read loop and one write pump per client, and feeds frames to the
 * dispatcher. All lobby semantics live behind the dispatcher; this layer
 * only moves bytes and tears down dead connections.
 */
type Server struct {
	Router     *ws_types.Router
	Dispatcher *handlers.Dispatcher

	upgrader websocket.Upgrader
	nextConn atomic.Uint64
}

func NewServer(store *postgres.Store, registry *game.State, redisClient *redis.RedisClient) *Server {
	router := ws_types.NewRouter()
	return &Server{
		Router:     router,
		Dispatcher: handlers.NewDispatcher(store, registry, router, redisClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start registers the websocket route on the gin engine.
func (s *Server) Start(engine *gin.Engine) {
	engine.GET("/ws", s.handleConnection)
	log.Println("Websocket server started on /ws")
}

func (s *Server) handleConnection(c *gin.Context) {
	wsConn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS-ERROR] upgrade failed: %v", err)
		return
	}

	connID := fmt.Sprintf("conn-%d", s.nextConn.Add(1))
	conn := ws_types.NewConn(connID, wsConn)
	log.Printf("[WS] %s connected from %s", connID, wsConn.RemoteAddr())

	go s.writePump(conn)
	s.readLoop(conn)
}

// readLoop consumes frames until the peer goes away, then releases whatever
// the connection was holding: capacity slot, membership edge, binding.
func (s *Server) readLoop(conn *ws_types.Conn) {
	ctx := context.Background()
	defer func() {
		s.Dispatcher.HandleDisconnect(ctx, conn)
		conn.Close()
		conn.WS.Close()
		log.Printf("[WS] %s disconnected", conn.ID)
	}()

	for {
		_, raw, err := conn.WS.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS-ERROR] %s read: %v", conn.ID, err)
			}
			return
		}

		response := s.Dispatcher.Dispatch(ctx, conn, raw)
		if response == nil {
			continue
		}
		data, err := json.Marshal(response)
		if err != nil {
			log.Printf("[WS-ERROR] %s marshaling response: %v", conn.ID, err)
			continue
		}
		if err := conn.Enqueue(data); err != nil {
			log.Printf("[WS-ERROR] %s enqueue response: %v", conn.ID, err)
			return
		}
	}
}

// writePump is the only writer on the underlying socket. It drains the
// outbound channel until Close shuts it.
func (s *Server) writePump(conn *ws_types.Conn) {
	for data := range conn.Send {
		conn.WS.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WS.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[WS-ERROR] %s write: %v", conn.ID, err)
			break
		}
	}
	conn.WS.Close()
}
