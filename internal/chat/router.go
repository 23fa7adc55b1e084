package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tyrowin/roomchat/internal/protocol"
)

// TypingPayload is broadcast to a room's members when a typing flag changes.
type TypingPayload struct {
	ChatID RoomID `json:"chatId"`
	Users  []User `json:"users"`
}

// ChatMessageEvent is broadcast to a room's members for every new message.
type ChatMessageEvent struct {
	ChatID  RoomID  `json:"chatId"`
	Message Message `json:"message"`
}

// Router applies one inbound event at a time to the Directory and RoomStore
// and asks the Dispatcher to fan the result out.
type Router struct {
	log        *slog.Logger
	dir        *Directory
	rooms      *RoomStore
	presence   *Presence
	dispatcher *Dispatcher
	singleRoom bool
	now        func() time.Time
}

// Option customizes a Router.
type Option func(*Router)

// WithSingleRoom switches the Router to the single global history mode.
func WithSingleRoom(enabled bool) Option {
	return func(r *Router) { r.singleRoom = enabled }
}

// WithClock overrides the clock used to timestamp messages.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter wires a Router over fresh stores.
func NewRouter(log *slog.Logger, opts ...Option) *Router {
	dir := NewDirectory()
	rooms := NewRoomStore()
	presence := NewPresence(dir, rooms)
	r := &Router{
		log:        log,
		dir:        dir,
		rooms:      rooms,
		presence:   presence,
		dispatcher: NewDispatcher(log, dir, presence),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Directory exposes the connection registry.
func (r *Router) Directory() *Directory { return r.dir }

// Rooms exposes the room store.
func (r *Router) Rooms() *RoomStore { return r.rooms }

// Presence exposes the presence tracker.
func (r *Router) Presence() *Presence { return r.presence }

// Connect registers a new connection and sends it the current snapshot.
func (r *Router) Connect(id ConnID, sender Sender) error {
	r.dir.Register(id, sender)
	if r.singleRoom {
		return r.dispatcher.ToOne(id, protocol.TypeConnection, r.rooms.GlobalHistory())
	}
	return r.dispatcher.ToOne(id, protocol.TypeConnection, r.presence.GlobalPresence())
}

// Disconnect removes the connection. When it was the last one every room is
// discarded; otherwise, if it had a bound name, the remaining connections
// receive the updated user list.
func (r *Router) Disconnect(id ConnID) error {
	_, named := r.dir.NameOf(id)
	if r.dir.Unregister(id) {
		r.rooms.ResetAll()
		r.log.Info("Last client left, state cleared")
		return nil
	}
	if !named {
		return nil
	}
	_, err := r.dispatcher.ToAll(protocol.TypeUserDisconnected, r.dir.NamesOfConnectedUsers())
	return err
}

// Handle processes one raw inbound frame from the connection. The returned
// error classifies why an event was dropped; nothing is ever sent back to
// the client on error.
func (r *Router) Handle(id ConnID, raw []byte) error {
	env, err := protocol.ParseEnvelope(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch env.MessageType {
	case protocol.TypeUserConnected:
		return r.userConnected(id, env)
	case protocol.TypeUserDisconnected:
		return r.userDisconnected(env)
	case protocol.TypeChatCreated:
		return r.chatCreated(env)
	case protocol.TypeUserJoinedChat:
		return r.userJoined(env)
	case protocol.TypeUserLeftChat:
		return r.userLeft(env)
	case protocol.TypeUserTypingStart:
		return r.typing(env, true)
	case protocol.TypeUserTypingEnd:
		return r.typing(env, false)
	case protocol.TypeChatMessage:
		return r.chatMessage(env)
	case protocol.TypeMessage:
		if r.singleRoom {
			return r.globalMessage(env)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedEventType, env.MessageType)
}

func (r *Router) userConnected(id ConnID, env protocol.Envelope) error {
	p, err := protocol.DecodeName(env.Payload)
	if err != nil {
		return invalid(err)
	}
	r.dir.SetName(id, p.Name)
	return r.toAll(env.MessageType, r.dir.NamesOfConnectedUsers())
}

func (r *Router) userDisconnected(env protocol.Envelope) error {
	p, err := protocol.DecodeName(env.Payload)
	if err != nil {
		return invalid(err)
	}
	holder, ok := r.dir.Lookup(p.Name)
	if !ok {
		return fmt.Errorf("%w: %q is not connected", ErrValidation, p.Name)
	}
	r.dir.ClearName(holder)
	return r.toAll(env.MessageType, r.dir.NamesOfConnectedUsers())
}

func (r *Router) chatCreated(env protocol.Envelope) error {
	p, err := protocol.DecodeName(env.Payload)
	if err != nil {
		return invalid(err)
	}
	roomID := r.rooms.CreateRoom(p.Name)
	r.log.Debug("Room created", "room", roomID, "creator", p.Name)
	return r.toAll(env.MessageType, r.rooms.AllRooms())
}

func (r *Router) userJoined(env protocol.Envelope) error {
	p, err := protocol.DecodeMembership(env.Payload)
	if err != nil {
		return invalid(err)
	}
	if err := r.rooms.JoinRoom(RoomID(p.ChatID), p.Name); err != nil {
		return err
	}
	return r.toAll(env.MessageType, r.rooms.AllRooms())
}

func (r *Router) userLeft(env protocol.Envelope) error {
	p, err := protocol.DecodeMembership(env.Payload)
	if err != nil {
		return invalid(err)
	}
	removed, err := r.rooms.LeaveRoom(RoomID(p.ChatID), p.Name)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %q is not a member of room %d", ErrValidation, p.Name, p.ChatID)
	}
	return r.toAll(env.MessageType, r.rooms.AllRooms())
}

func (r *Router) typing(env protocol.Envelope, typing bool) error {
	p, err := protocol.DecodeMembership(env.Payload)
	if err != nil {
		return invalid(err)
	}
	roomID := RoomID(p.ChatID)
	found, err := r.rooms.SetTyping(roomID, p.Name, typing)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q is not a member of room %d", ErrValidation, p.Name, p.ChatID)
	}
	members, err := r.presence.RoomScopedMembers(roomID)
	if err != nil {
		return err
	}
	_, err = r.dispatcher.ToRoomMembers(roomID, env.MessageType, TypingPayload{ChatID: roomID, Users: members})
	return err
}

func (r *Router) chatMessage(env protocol.Envelope) error {
	p, err := protocol.DecodeChatMessage(env.Payload)
	if err != nil {
		return invalid(err)
	}
	roomID := RoomID(p.ChatID)
	msg := Message{From: p.From, Text: p.Text, Time: r.now().UnixMilli()}
	if err := r.rooms.AppendMessage(roomID, msg.From, msg.Text, msg.Time); err != nil {
		return err
	}
	_, err = r.dispatcher.ToRoomMembers(roomID, env.MessageType, ChatMessageEvent{ChatID: roomID, Message: msg})
	return err
}

func (r *Router) globalMessage(env protocol.Envelope) error {
	p, err := protocol.DecodeGlobalMessage(env.Payload)
	if err != nil {
		return invalid(err)
	}
	msg, err := r.rooms.AppendGlobal(p.From, p.Text, r.now().UnixMilli())
	if err != nil {
		return err
	}
	return r.toAll(env.MessageType, msg)
}

func (r *Router) toAll(messageType string, payload any) error {
	_, err := r.dispatcher.ToAll(messageType, payload)
	return err
}

func invalid(err error) error {
	if errors.Is(err, protocol.ErrInvalidPayload) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
