package chat

import "github.com/samber/lo"

// ConnID identifies a live connection. IDs are never reused.
type ConnID uint64

// RoomID identifies a room. IDs start at 1.
type RoomID int

// User is a room membership record.
type User struct {
	Name   string `json:"name"`
	Typing bool   `json:"typing"`
}

// Message is an immutable chat line. Time is epoch milliseconds assigned by
// the server.
type Message struct {
	From string `json:"from"`
	Text string `json:"text"`
	Time int64  `json:"time"`
}

// Room is a snapshot of a room's state as it is sent over the wire.
type Room struct {
	ID       RoomID    `json:"chatId"`
	Messages []Message `json:"messages"`
	Users    []User    `json:"users"`
}

// clone returns a deep copy whose slices are never nil.
func (r *Room) clone() Room {
	return Room{
		ID:       r.ID,
		Messages: append(make([]Message, 0, len(r.Messages)), r.Messages...),
		Users:    append(make([]User, 0, len(r.Users)), r.Users...),
	}
}

// memberIndex returns the position of the first member named name, or -1.
func (r *Room) memberIndex(name string) int {
	_, idx, ok := lo.FindIndexOf(r.Users, func(u User) bool { return u.Name == name })
	if !ok {
		return -1
	}
	return idx
}
