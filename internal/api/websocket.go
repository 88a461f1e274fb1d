package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/lectio/internal/logging"
	"github.com/FocuswithJustin/lectio/internal/server"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Message types sent to WebSocket clients.
const (
	MessageResult          = "result"
	MessageError           = "error"
	MessageCatalogReloaded = "catalog_reloaded"
)

// Message is one frame sent to a WebSocket client.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Result    *ParseResult    `json:"result,omitempty"`
	Error     *APIError       `json:"error,omitempty"`
	Catalog   *CatalogSummary `json:"catalog,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Client is one WebSocket connection. Every text frame it sends is parsed
// as a citation and answered with a result message.
type Client struct {
	hub  *Hub
	srv  *Server
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue queues data for the write pump. A client that cannot keep up is
// disconnected.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		logging.Warn("websocket client too slow, disconnecting")
		c.close()
	}
}

// Hub tracks connected clients and broadcasts to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	metrics    *Metrics
}

// NewHub creates a hub. Start it with Run.
func NewHub(m *Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run serves registrations and broadcasts until ctx ends, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.metrics.wsClients.Set(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.wsClients.Set(float64(n))
			logging.WebSocketEvent("client_connected", n)

		case c := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, c)
			n := len(h.clients)
			h.mu.Unlock()
			c.close()
			h.metrics.wsClients.Set(float64(n))
			logging.WebSocketEvent("client_disconnected", n)

		case data := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				c.enqueue(data)
			}
			h.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. It drops the message when the hub
// is backed up.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message", "type", msg.Type)
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// handleFrame parses one incoming frame. A frame starting with '{' is a
// ParseRequest; anything else is a bare citation parsed leniently.
func (s *Server) handleFrame(ctx context.Context, data []byte) Message {
	var req ParseRequest
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return Message{
				Type:  MessageError,
				ID:    uuid.NewString(),
				Error: &APIError{Code: CodeInvalidInput, Message: "invalid request: " + err.Error()},
			}
		}
	} else {
		req.Citation = string(data)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	res, err := s.parse(ctx, transportWebSocket, req.Citation, req.Strict, req.Normalize)
	if err != nil {
		return Message{Type: MessageError, ID: req.ID, Error: apiError(err)}
	}
	return Message{Type: MessageResult, ID: req.ID, Result: &res}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.leave(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(c.srv.cfg.MaxCitationLength) + 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket unexpected close", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		msg := c.srv.handleFrame(ctx, data)
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
		out, err := json.Marshal(msg)
		if err != nil {
			logging.Error("failed to marshal websocket reply", "error", err)
			continue
		}
		c.enqueue(out)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleWebSocket upgrades the connection and starts the client pumps.
// Origins are checked against the CORS allow list.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	cors := server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cors.AllowsOrigin(r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		hub:  s.hub,
		srv:  s,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if !s.hub.join(c) {
		conn.Close()
		return
	}

	// The request context ends when the handler returns, so the pumps
	// get a detached one that still carries the request id.
	ctx := logging.WithRequestID(context.Background(), logging.GetRequestID(r.Context()))
	go c.writePump()
	go c.readPump(ctx)
}
