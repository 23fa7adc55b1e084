package chat

import (
	"fmt"
	"slices"
	"sort"

	"github.com/samber/lo"
)

// RoomStore holds every room and the global history used in single-room
// mode. Rooms are kept in creation order.
type RoomStore struct {
	rooms   []*Room
	byID    map[RoomID]*Room
	nextID  RoomID
	history []Message
}

// NewRoomStore returns an empty store whose first room gets id 1.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		byID:   make(map[RoomID]*Room),
		nextID: 1,
	}
}

// CreateRoom allocates the next room id and makes creatorName its sole member.
func (s *RoomStore) CreateRoom(creatorName string) RoomID {
	room := &Room{
		ID:       s.nextID,
		Messages: []Message{},
		Users:    []User{{Name: creatorName}},
	}
	s.nextID++
	s.rooms = append(s.rooms, room)
	s.byID[room.ID] = room
	return room.ID
}

func (s *RoomStore) get(id RoomID) (*Room, error) {
	room, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, id)
	}
	return room, nil
}

// JoinRoom appends name to the room's members. Joining twice adds a second
// membership record.
func (s *RoomStore) JoinRoom(id RoomID, name string) error {
	room, err := s.get(id)
	if err != nil {
		return err
	}
	room.Users = append(room.Users, User{Name: name})
	return nil
}

// LeaveRoom removes the first member named name and reports whether one was
// removed.
func (s *RoomStore) LeaveRoom(id RoomID, name string) (bool, error) {
	room, err := s.get(id)
	if err != nil {
		return false, err
	}
	idx := room.memberIndex(name)
	if idx < 0 {
		return false, nil
	}
	room.Users = slices.Delete(room.Users, idx, idx+1)
	return true, nil
}

// SetTyping updates the typing flag of the first member named name and
// reports whether the member was found.
func (s *RoomStore) SetTyping(id RoomID, name string, typing bool) (bool, error) {
	room, err := s.get(id)
	if err != nil {
		return false, err
	}
	idx := room.memberIndex(name)
	if idx < 0 {
		return false, nil
	}
	room.Users[idx].Typing = typing
	return true, nil
}

// AppendMessage adds a message to the room and keeps the history sorted by
// time. Equal times keep insertion order.
func (s *RoomStore) AppendMessage(id RoomID, from, text string, at int64) error {
	if err := validateMessage(from, text); err != nil {
		return err
	}
	room, err := s.get(id)
	if err != nil {
		return err
	}
	room.Messages = appendSorted(room.Messages, Message{From: from, Text: text, Time: at})
	return nil
}

// AppendGlobal adds a message to the single-room history.
func (s *RoomStore) AppendGlobal(from, text string, at int64) (Message, error) {
	if err := validateMessage(from, text); err != nil {
		return Message{}, err
	}
	msg := Message{From: from, Text: text, Time: at}
	s.history = appendSorted(s.history, msg)
	return msg, nil
}

// GlobalHistory returns a copy of the single-room history.
func (s *RoomStore) GlobalHistory() []Message {
	return append(make([]Message, 0, len(s.history)), s.history...)
}

// Room returns a snapshot of one room.
func (s *RoomStore) Room(id RoomID) (Room, error) {
	room, err := s.get(id)
	if err != nil {
		return Room{}, err
	}
	return room.clone(), nil
}

// AllRooms returns snapshots of every room in creation order.
func (s *RoomStore) AllRooms() []Room {
	return lo.Map(s.rooms, func(r *Room, _ int) Room { return r.clone() })
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

// ResetAll drops every room and the global history and restarts room ids
// at 1.
func (s *RoomStore) ResetAll() {
	s.rooms = nil
	s.byID = make(map[RoomID]*Room)
	s.nextID = 1
	s.history = nil
}

func validateMessage(from, text string) error {
	switch {
	case from == "":
		return fmt.Errorf("%w: empty sender", ErrValidation)
	case text == "":
		return fmt.Errorf("%w: empty text", ErrValidation)
	}
	return nil
}

func appendSorted(messages []Message, msg Message) []Message {
	messages = append(messages, msg)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Time < messages[j].Time
	})
	return messages
}
