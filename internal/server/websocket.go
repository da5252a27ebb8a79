package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/errors"
	wshandler "github.com/windfall/kidvocab_service/internal/handler/ws"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	errClientClosed   = stderrors.New("client closed")
	errSendBufferFull = stderrors.New("send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the router
	},
}

// Client represents a WebSocket client.
type Client struct {
	ID   string
	Hub  *WebSocketHub
	Conn *websocket.Conn

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// Send queues a message for the client without blocking.
func (c *Client) Send(msgType string, payload interface{}) error {
	data, err := json.Marshal(wshandler.Response{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Client) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WebSocketHub manages WebSocket connections.
type WebSocketHub struct {
	handler         *wshandler.Handler
	maxMessageBytes int64
	sendBuffer      int

	clients map[*Client]bool
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewWebSocketHub creates a new WebSocket hub.
func NewWebSocketHub(handler *wshandler.Handler, maxMessageBytes int64, sendBuffer int, log zerolog.Logger) *WebSocketHub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &WebSocketHub{
		handler:         handler,
		maxMessageBytes: maxMessageBytes,
		sendBuffer:      sendBuffer,
		clients:         make(map[*Client]bool),
		log:             log,
	}
}

// HandleWebSocket upgrades the connection and runs a practice session on it
// until the client disconnects.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}

	// The session outlives the upgrade request.
	sess := h.handler.NewSession(context.WithoutCancel(r.Context()), client)
	client.ID = sess.ID()

	h.register(client)
	client.Send(wshandler.TypeState, sess.Snapshot())

	go client.writePump()
	go client.readPump(sess)
}

// Broadcast sends a notice to all connected clients.
func (h *WebSocketHub) Broadcast(msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if err := client.Send(msgType, payload); err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("Failed to broadcast")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every client's queue, so messages already sent (such as a
// shutdown notice) are flushed before the close frame, and waits until the
// clients disconnect or ctx is done.
func (h *WebSocketHub) CloseAll(ctx context.Context) error {
	h.mu.RLock()
	for client := range h.clients {
		client.close()
	}
	h.mu.RUnlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for h.ClientCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (h *WebSocketHub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Info().Str("client_id", c.ID).Msg("Client connected")
}

func (h *WebSocketHub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.log.Info().Str("client_id", c.ID).Msg("Client disconnected")
}

func (c *Client) readPump(sess *wshandler.Session) {
	defer func() {
		sess.Close()
		c.Hub.unregister(c)
		c.close()
		c.Conn.Close()
	}()

	if c.Hub.maxMessageBytes > 0 {
		c.Conn.SetReadLimit(c.Hub.maxMessageBytes)
	}
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Error().Err(err).Str("client_id", c.ID).Msg("WebSocket read error")
			}
			break
		}

		var msg wshandler.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.log.Warn().Err(err).Str("client_id", c.ID).Msg("Failed to parse WebSocket message")
			c.Send(wshandler.TypeError, wshandler.ErrorPayload{Code: string(errors.ErrValidation), Message: "invalid message"})
			continue
		}

		sess.Handle(msg.Type, msg.Payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
