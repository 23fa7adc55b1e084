// Package server coordinates client registration, event routing, and
// connection cleanup for the chat WebSocket system via the Hub type.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
)

type inboundEvent struct {
	client  *Client
	payload []byte
}

// Stats is a point-in-time view of the hub's state.
type Stats struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
	Rooms       int `json:"rooms"`
}

// Hub serializes every connection lifecycle change and inbound event onto a
// single goroutine that owns the chat Router and its stores.
type Hub struct {
	config     Config
	log        *slog.Logger
	router     *chat.Router
	clients    map[chat.ConnID]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	queries    chan func()
	connSeq    atomic.Uint64
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a Hub with fresh chat state. The returned Hub does nothing
// until Run is called.
func NewHub(cfg Config, log *slog.Logger) *Hub {
	cfg = cfg.Sanitize()
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		config:     cfg,
		log:        log,
		router:     chat.NewRouter(log, chat.WithSingleRoom(cfg.SingleRoom)),
		clients:    make(map[chat.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		queries:    make(chan func()),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

func (h *Hub) nextConnID() chat.ConnID {
	return chat.ConnID(h.connSeq.Add(1))
}

// Run starts the hub's event loop. It blocks until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case ev := <-h.inbound:
			h.handleInbound(ev)
		case query := <-h.queries:
			query()
		}
	}
}

// Register hands a freshly accepted client to the hub, which then starts its
// pumps. It returns false if the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// enqueue blocks until the hub accepts the payload, keeping per-connection
// order. It returns false once the hub has stopped.
func (h *Hub) enqueue(client *Client, payload []byte) bool {
	select {
	case h.inbound <- inboundEvent{client: client, payload: payload}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		h.log.Warn("Received nil client registration; skipping")
		return
	}
	h.clients[client.id] = client
	if err := h.router.Connect(client.id, client); err != nil {
		client.log.Error("Failed to send connection snapshot", "error", err)
	}
	client.log.Info("Client registered", "total", len(h.clients))

	if client.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients[client.id]; !ok {
		return
	}
	delete(h.clients, client.id)
	if err := h.router.Disconnect(client.id); err != nil {
		client.log.Error("Failed to broadcast disconnect", "error", err)
	}
	client.finish()
	client.log.Info("Client unregistered", "total", len(h.clients))
}

func (h *Hub) handleInbound(ev inboundEvent) {
	if _, ok := h.clients[ev.client.id]; !ok {
		return
	}
	err := h.router.Handle(ev.client.id, ev.payload)
	switch {
	case err == nil:
	case chat.IsIgnorable(err):
		ev.client.log.Debug("Event dropped", "reason", err)
	case errors.Is(err, chat.ErrUnsupportedEventType):
		ev.client.log.Warn("Event dropped", "reason", err)
	default:
		ev.client.log.Error("Event failed", "error", err)
	}
}

// Stats returns counters read on the hub goroutine.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	result := make(chan Stats, 1)
	query := func() {
		result <- Stats{
			Connections: h.router.Directory().Len(),
			Users:       len(h.router.Directory().NamesOfConnectedUsers()),
			Rooms:       h.router.Rooms().Len(),
		}
	}
	select {
	case h.queries <- query:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	case <-h.done:
		return Stats{}, ErrHubStopped
	}
	return <-result, nil
}

// ErrHubStopped is returned by calls made after the hub has shut down.
var ErrHubStopped = errors.New("hub stopped")

func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")
	for id, client := range h.clients {
		client.Close()
		client.finish()
		delete(h.clients, id)
	}
}

// Shutdown stops the hub and waits for all client goroutines to finish, or
// until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
