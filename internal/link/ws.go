// Package link carries the wire protocol to the companion app. The
// board firmware speaks the same frames over BLE; here they travel over
// a websocket (phone on the local network) or a line stream (serial
// bridge during development).
package link

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/wire"
)

// Server fans outbound frames to every connected client and publishes
// decoded inbound frames onto the bus.
type Server struct {
	bus      *events.Bus
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client wraps one connection. Writes come from both the bus delivery
// goroutine and this client's read pump, so they take the write lock.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// NewServer returns a link server. Register HandleEvent on the bus to
// start broadcasting.
func NewServer(bus *events.Bus) *Server {
	return &Server{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

// Router returns the HTTP surface: the websocket endpoint plus a
// liveness probe.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(handlers.RecoveryHandler())
	r.Use(stdoutLogger)
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("[link] client connected from %s", conn.RemoteAddr())

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.conn.Close()
		log.Printf("[link] client %s disconnected", c.conn.RemoteAddr())
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := wire.Decode(string(data))
		if err != nil {
			log.Printf("[link] bad frame from %s: %v", c.conn.RemoteAddr(), err)
			if reply, ok := wire.Encode(events.InvalidMove{Reason: err.Error()}); ok {
				_ = c.write(reply)
			}
			continue
		}
		s.bus.Publish(ev)
	}
}

// HandleEvent encodes outbound events and broadcasts them. Events with
// no wire form pass through silently.
func (s *Server) HandleEvent(ev events.Event) error {
	line, ok := wire.Encode(ev)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if err := c.write(line); err != nil {
			log.Printf("[link] write to %s: %v", c.conn.RemoteAddr(), err)
		}
	}
	return nil
}
