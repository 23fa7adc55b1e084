package chat

import (
	"fmt"
	"log/slog"

	"github.com/Tyrowin/roomchat/internal/protocol"
)

// Dispatcher serializes outbound events and hands them to connection
// Senders. A failing Sender is logged and skipped; it never prevents
// delivery to the remaining recipients.
type Dispatcher struct {
	log      *slog.Logger
	dir      *Directory
	presence *Presence
}

// NewDispatcher returns a Dispatcher delivering through dir.
func NewDispatcher(log *slog.Logger, dir *Directory, presence *Presence) *Dispatcher {
	return &Dispatcher{log: log, dir: dir, presence: presence}
}

// ToAll delivers the event to every live connection and returns the number
// of successful deliveries.
func (d *Dispatcher) ToAll(messageType string, payload any) (int, error) {
	data, err := protocol.Encode(messageType, payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", messageType, err)
	}
	return d.deliver(messageType, data, d.dir.Connections()), nil
}

// ToOne delivers the event to a single connection. Unknown connections are
// ignored.
func (d *Dispatcher) ToOne(id ConnID, messageType string, payload any) error {
	if _, ok := d.dir.Sender(id); !ok {
		return nil
	}
	data, err := protocol.Encode(messageType, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", messageType, err)
	}
	d.deliver(messageType, data, []ConnID{id})
	return nil
}

// ToRoomMembers delivers the event to the connections whose bound names are
// members of the room.
func (d *Dispatcher) ToRoomMembers(roomID RoomID, messageType string, payload any) (int, error) {
	recipients, err := d.presence.RoomRecipients(roomID)
	if err != nil {
		return 0, err
	}
	data, err := protocol.Encode(messageType, payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", messageType, err)
	}
	return d.deliver(messageType, data, recipients), nil
}

func (d *Dispatcher) deliver(messageType string, data []byte, recipients []ConnID) int {
	delivered := 0
	for _, id := range recipients {
		sender, ok := d.dir.Sender(id)
		if !ok {
			continue
		}
		if err := safeSend(sender, data); err != nil {
			d.log.Warn("Delivery failed", "conn", id, "type", messageType, "error", err)
			continue
		}
		delivered++
	}
	d.log.Debug("Event dispatched", "type", messageType, "recipients", len(recipients), "delivered", delivered)
	return delivered
}

func safeSend(sender Sender, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()
	return sender.Send(data)
}
