package realtime

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/config"
	"github.com/localhands/marketplace-api/internal/observability"
)

const maxMessageSize = 4096

// Conn is the part of a websocket connection the hub drives.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one connected viewer.
type Client struct {
	ID   string
	conn Conn
	send chan []byte
	hub  *Hub
}

// Hub is the process-scoped registry of connected viewers. Connect and Disconnect are
// its only mutators and both are applied on the Run loop, which owns the registry.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64

	sendBuffer   int
	writeWait    time.Duration
	pingInterval time.Duration

	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(cfg config.RealtimeConfig, logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Hub{
		clients:      make(map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan []byte, 256),
		done:         make(chan struct{}),
		sendBuffer:   sendBuffer,
		writeWait:    cfg.WriteWait(),
		pingInterval: cfg.PingInterval(),
		logger:       logger,
		metrics:      metrics,
	}
}

// Run owns the registry until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.setCount()
			h.logger.Info("realtime hub stopped")
			return

		case client := <-h.register:
			h.clients[client.ID] = client
			h.setCount()
			h.logger.Debug("viewer connected", zap.String("client_id", client.ID), zap.Int("viewers", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				h.setCount()
				h.logger.Debug("viewer disconnected", zap.String("client_id", client.ID), zap.Int("viewers", len(h.clients)))
			}

		case message := <-h.broadcast:
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow viewer: drop it rather than block the fan-out.
					close(client.send)
					delete(h.clients, id)
					h.logger.Warn("dropping slow viewer", zap.String("client_id", id))
				}
			}
			h.setCount()
		}
	}
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.SetConnectedViewers(len(h.clients))
}

// Count returns the number of registered viewers.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Connect registers a client. It reports false once the hub has stopped.
func (h *Hub) Connect(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Disconnect removes a client; unknown or already removed clients are ignored.
func (h *Hub) Disconnect(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for every connected viewer. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Error("broadcast queue full; message dropped")
		return false
	}
}

// Publish satisfies Publisher by broadcasting locally.
func (h *Hub) Publish(_ context.Context, message []byte) error {
	if !h.Broadcast(message) {
		return errBroadcastDropped
	}
	return nil
}

// Serve registers conn as a viewer and pumps it until the connection ends. It returns
// only after both pumps have stopped touching conn; the websocket handler recycles the
// connection as soon as Serve returns.
func (h *Hub) Serve(conn Conn) {
	client := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		hub:  h,
	}
	if !h.Connect(client) {
		_ = conn.Close()
		return
	}

	written := make(chan struct{})
	go func() {
		defer close(written)
		client.writePump()
	}()
	client.readPump()
	<-written
}

// readPump discards inbound frames; it exists to process control frames and notice
// the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		_ = c.conn.Close()
	}()

	pongWait := 2 * c.hub.pingInterval
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.hub.logger.Debug("viewer read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
