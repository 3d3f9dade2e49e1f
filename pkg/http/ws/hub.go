package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub fans messages out to WebSocket subscribers of a topic. Topics here are
// attempt ids; a browser tab subscribes to its own attempt to drive the
// progress UI without polling.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Connection]struct{}
	logger      zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a connection for a topic.
func (h *Hub) Subscribe(topic string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subscribers[topic]
	if !ok {
		conns = make(map[*Connection]struct{})
		h.subscribers[topic] = conns
	}
	conns[conn] = struct{}{}
	h.logger.Debug().Str("topic", topic).Msg("subscriber registered")
}

// Unsubscribe removes a connection from a topic and closes it.
func (h *Hub) Unsubscribe(topic string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.subscribers[topic]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, topic)
		}
	}
	conn.Close()
}

// Broadcast sends a message to every subscriber of the topic. Send failures
// are logged and skipped; a slow subscriber never blocks the publisher.
func (h *Hub) Broadcast(topic string, msg Message) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.subscribers[topic]))
	for conn := range h.subscribers[topic] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.logger.Warn().Err(err).Str("topic", topic).Msg("subscriber send failed")
		}
	}
}

// SubscriberCount returns the number of live subscribers for a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Connection wraps a WebSocket connection with a buffered send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 64),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump drains the send queue onto the wire.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler until the peer goes away.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionClosed = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull    = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
