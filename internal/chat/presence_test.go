package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_GlobalPresence(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRoomStore()
	presence := NewPresence(dir, rooms)

	dir.Register(1, &recorder{})
	dir.Register(2, &recorder{})
	dir.SetName(1, "alice")
	rooms.CreateRoom("alice")

	snap := presence.GlobalPresence()

	req.Equal([]string{"alice"}, snap.Users)
	req.Len(snap.Chats, 1)
	req.Equal(RoomID(1), snap.Chats[0].ID)
}

func TestPresence_EmptySnapshotSerializesArrays(t *testing.T) {
	presence := NewPresence(NewDirectory(), NewRoomStore())

	snap := presence.GlobalPresence()

	require.NotNil(t, snap.Users)
	require.Empty(t, snap.Chats)
}

func TestPresence_RoomRecipients(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRoomStore()
	presence := NewPresence(dir, rooms)

	for id := ConnID(1); id <= 3; id++ {
		dir.Register(id, &recorder{})
	}
	dir.SetName(1, "alice")
	dir.SetName(2, "bob")
	dir.SetName(3, "carol")

	roomID := rooms.CreateRoom("alice")
	req.NoError(rooms.JoinRoom(roomID, "carol"))
	req.NoError(rooms.JoinRoom(roomID, "carol"))
	// Given a member whose connection is gone
	req.NoError(rooms.JoinRoom(roomID, "dave"))

	ids, err := presence.RoomRecipients(roomID)
	req.NoError(err)
	req.Equal([]ConnID{1, 3}, ids)

	_, err = presence.RoomRecipients(42)
	req.ErrorIs(err, ErrRoomNotFound)
}

func TestPresence_RoomScopedMembers(t *testing.T) {
	rooms := NewRoomStore()
	presence := NewPresence(NewDirectory(), rooms)
	roomID := rooms.CreateRoom("alice")
	_, err := rooms.SetTyping(roomID, "alice", true)
	require.NoError(t, err)

	members, err := presence.RoomScopedMembers(roomID)

	require.NoError(t, err)
	require.Equal(t, []User{{Name: "alice", Typing: true}}, members)
}
