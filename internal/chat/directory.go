//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_sender.go -package=mocks

package chat

import (
	"slices"

	"github.com/samber/lo"
)

// Sender is the outbound half of a connection. Implementations must not
// block: a payload that cannot be queued is reported as an error.
type Sender interface {
	Send(payload []byte) error
}

type directoryEntry struct {
	name   string
	sender Sender
}

// Directory maps live connections to their bound user name and outbound
// Sender. A reverse index from name to connection is kept in sync so that
// room-scoped delivery does not scan every connection.
type Directory struct {
	conns  map[ConnID]*directoryEntry
	byName map[string]ConnID
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		conns:  make(map[ConnID]*directoryEntry),
		byName: make(map[string]ConnID),
	}
}

// Register adds a connection with no name bound. Registering an id twice
// replaces its sender and keeps its name.
func (d *Directory) Register(id ConnID, sender Sender) {
	if e, ok := d.conns[id]; ok {
		e.sender = sender
		return
	}
	d.conns[id] = &directoryEntry{sender: sender}
}

// SetName binds name to the connection. Unknown ids are ignored. If another
// connection currently holds name, that binding is cleared: the last
// connection to claim a name wins.
func (d *Directory) SetName(id ConnID, name string) {
	e, ok := d.conns[id]
	if !ok || e.name == name {
		return
	}
	if prev, held := d.byName[name]; held && prev != id {
		d.conns[prev].name = ""
	}
	d.unbind(id, e)
	e.name = name
	if name != "" {
		d.byName[name] = id
	}
}

// ClearName unbinds the connection's name. The connection stays registered.
func (d *Directory) ClearName(id ConnID) {
	if e, ok := d.conns[id]; ok {
		d.unbind(id, e)
		e.name = ""
	}
}

func (d *Directory) unbind(id ConnID, e *directoryEntry) {
	if e.name == "" {
		return
	}
	if holder, ok := d.byName[e.name]; ok && holder == id {
		delete(d.byName, e.name)
	}
}

// Unregister removes the connection and reports whether the Directory is
// now empty.
func (d *Directory) Unregister(id ConnID) bool {
	if e, ok := d.conns[id]; ok {
		d.unbind(id, e)
		delete(d.conns, id)
	}
	return len(d.conns) == 0
}

// Lookup returns the connection currently bound to name.
func (d *Directory) Lookup(name string) (ConnID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// NameOf returns the name bound to the connection, if any.
func (d *Directory) NameOf(id ConnID) (string, bool) {
	e, ok := d.conns[id]
	if !ok || e.name == "" {
		return "", false
	}
	return e.name, true
}

// Sender returns the outbound handle of the connection.
func (d *Directory) Sender(id ConnID) (Sender, bool) {
	e, ok := d.conns[id]
	if !ok {
		return nil, false
	}
	return e.sender, true
}

// Connections returns every live connection id in ascending order.
func (d *Directory) Connections() []ConnID {
	ids := lo.Keys(d.conns)
	slices.Sort(ids)
	return ids
}

// NamesOfConnectedUsers returns the non-empty names bound to live
// connections, ordered by connection id.
func (d *Directory) NamesOfConnectedUsers() []string {
	names := make([]string, 0, len(d.byName))
	for _, id := range d.Connections() {
		if name := d.conns[id].name; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Len returns the number of live connections.
func (d *Directory) Len() int {
	return len(d.conns)
}
