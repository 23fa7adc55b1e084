package chat

import "github.com/samber/lo"

// Snapshot is the global presence view sent to a client on connect.
type Snapshot struct {
	Users []string `json:"users"`
	Chats []Room   `json:"chats"`
}

// Presence derives read-only views from a Directory and a RoomStore.
type Presence struct {
	dir   *Directory
	rooms *RoomStore
}

// NewPresence composes dir and rooms.
func NewPresence(dir *Directory, rooms *RoomStore) *Presence {
	return &Presence{dir: dir, rooms: rooms}
}

// GlobalPresence returns the connected user names and every room.
func (p *Presence) GlobalPresence() Snapshot {
	return Snapshot{
		Users: p.dir.NamesOfConnectedUsers(),
		Chats: p.rooms.AllRooms(),
	}
}

// RoomScopedMembers returns the current members of one room.
func (p *Presence) RoomScopedMembers(id RoomID) ([]User, error) {
	room, err := p.rooms.Room(id)
	if err != nil {
		return nil, err
	}
	return room.Users, nil
}

// RoomRecipients resolves the room's members to the connections currently
// bound to their names. Members without a live connection are skipped and a
// connection appears once even if its name joined more than once.
func (p *Presence) RoomRecipients(id RoomID) ([]ConnID, error) {
	members, err := p.RoomScopedMembers(id)
	if err != nil {
		return nil, err
	}
	ids := lo.FilterMap(members, func(u User, _ int) (ConnID, bool) {
		return p.dir.Lookup(u.Name)
	})
	return lo.Uniq(ids), nil
}
