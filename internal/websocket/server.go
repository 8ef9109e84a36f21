package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/alerts"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Message is the envelope for all pushed updates.
type Message struct {
	Type      string      `json:"type"` // "reading", "alert"
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

// Server pushes reading and alert updates to connected clients. Slow
// clients are dropped rather than allowed to back up the sampler.
type Server struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// NewServer creates a websocket broadcast server.
func NewServer(log *logger.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		logger:  log.Named("websocket"),
	}
}

// HandleConnection upgrades an HTTP request and registers the client.
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", logger.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Debug("Client connected",
		logger.String("remote_addr", r.RemoteAddr),
		logger.Int("client_count", count))

	go s.writeLoop(c)
	go s.readLoop(c)
}

// BroadcastReading pushes a new reading to all clients.
func (s *Server) BroadcastReading(r *airquality.Reading) {
	s.broadcast(Message{Type: "reading", Data: r, Timestamp: time.Now()})
}

// BroadcastAlert pushes a newly raised alert to all clients.
func (s *Server) BroadcastAlert(a *alerts.Alert) {
	s.broadcast(Message{Type: "alert", Data: a, Timestamp: time.Now()})
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// Client can't keep up; drop it
			delete(s.clients, c)
			close(c.send)
		}
	}
}

// writeLoop drains the client's send channel onto the connection.
func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			s.remove(c)
			return
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
