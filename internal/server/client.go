// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client represents a WebSocket connection. It implements chat.Sender; Send
// and the closing of the send channel only ever happen on the hub goroutine.
type Client struct {
	id          chat.ConnID
	session     string
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	addr        string
	closed      bool
	closeOnce   sync.Once
	rateLimiter *rateLimiter
	log         *slog.Logger
}

// NewClient creates a Client for conn. The send channel is buffered with
// the configured size.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.config
	if conn != nil {
		conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	id := hub.nextConnID()
	session := uuid.NewString()

	return &Client{
		id:          id,
		session:     session,
		conn:        conn,
		send:        make(chan []byte, cfg.SendBufferSize),
		hub:         hub,
		addr:        addr,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		log:         hub.log.With("conn", id, "session", session, "addr", addr),
	}
}

// ID returns the connection id assigned on accept.
func (c *Client) ID() chat.ConnID {
	return c.id
}

// GetSendChan returns the client's send channel for reading outgoing messages.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// Send queues payload without blocking. A full buffer disconnects the client.
func (c *Client) Send(payload []byte) error {
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		c.log.Warn("Send buffer full, disconnecting slow client", "buffer", cap(c.send))
		c.Close()
		return ErrSendBufferFull
	}
}

// Close closes the underlying connection. The read pump then fails and
// unregisters the client.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.conn == nil {
			return
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error closing connection", "error", err)
		}
	})
}

// finish marks the client unregistered and closes its send channel so the
// write pump emits a close frame. Called by the hub only.
func (c *Client) finish() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Warn("Error setting read deadline in pong handler", "error", err)
		}
		return nil
	})
}

// handleReadError logs the read failure at a level matching its cause.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Message exceeded maximum size", "limit", c.hub.config.MaxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info("Client disconnected", "reason", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Info("Client connection closed", "reason", err)
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		c.log.Warn("Unexpected WebSocket close", "error", err)
	default:
		c.log.Warn("WebSocket read error", "error", err)
	}
}

func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		c.log.Warn("Rate limit exceeded; discarding message",
			"burst", c.hub.config.RateLimit.Burst,
			"interval", c.hub.config.RateLimit.RefillInterval)
		return false
	}
	return true
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.Close()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		if !c.checkRateLimit() {
			continue
		}
		if !c.hub.enqueue(c, raw) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.handleMessage(message, ok) {
				return
			}
		case <-ticker.C:
			if !c.handlePing() {
				return
			}
		}
	}
}

// handleMessage returns false once the connection should stop writing.
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline", "error", err)
		return false
	}
	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error writing close message", "error", err)
		}
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing message", "error", err)
		}
		return false
	}
	return true
}

func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline for ping", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.log.Warn("Error writing ping message", "error", err)
		return false
	}
	return true
}
