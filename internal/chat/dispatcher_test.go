package chat

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/Tyrowin/roomchat/internal/mocks"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher() (*Dispatcher, *Directory, *RoomStore) {
	dir := NewDirectory()
	rooms := NewRoomStore()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewDispatcher(log, dir, NewPresence(dir, rooms)), dir, rooms
}

func TestDispatcher_ToAllIsolatesFailures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dispatcher, dir, _ := newTestDispatcher()

	failing := mocks.NewMockSender(ctrl)
	panicking := mocks.NewMockSender(ctrl)
	healthy := mocks.NewMockSender(ctrl)
	dir.Register(1, failing)
	dir.Register(2, panicking)
	dir.Register(3, healthy)

	want := []byte(`{"messageType":"user-connected","payload":["alice"]}`)
	// Given the first two recipients fail in different ways
	failing.EXPECT().Send(want).Return(errors.New("buffer full")).Times(1)
	panicking.EXPECT().Send(want).DoAndReturn(func([]byte) error { panic("boom") }).Times(1)
	// Then the last one still receives the event
	healthy.EXPECT().Send(want).Return(nil).Times(1)

	delivered, err := dispatcher.ToAll("user-connected", []string{"alice"})
	req.NoError(err)
	req.Equal(1, delivered)
}

func TestDispatcher_ToOneUnknownConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	dispatcher, dir, _ := newTestDispatcher()
	other := mocks.NewMockSender(ctrl)
	dir.Register(1, other)
	// No Send is expected on other

	require.NoError(t, dispatcher.ToOne(2, "connection", []string{}))
}

func TestDispatcher_ToRoomMembers(t *testing.T) {
	req := require.New(t)
	dispatcher, dir, rooms := newTestDispatcher()

	inside, outside := &recorder{}, &recorder{}
	dir.Register(1, inside)
	dir.Register(2, outside)
	dir.SetName(1, "alice")
	dir.SetName(2, "bob")
	roomID := rooms.CreateRoom("alice")

	delivered, err := dispatcher.ToRoomMembers(roomID, "user-typing-start", map[string]int{"chatId": 1})
	req.NoError(err)
	req.Equal(1, delivered)
	req.Len(inside.frames, 1)
	req.Empty(outside.frames)

	_, err = dispatcher.ToRoomMembers(9, "user-typing-start", nil)
	req.ErrorIs(err, ErrRoomNotFound)
}

func TestDispatcher_EncodeFailure(t *testing.T) {
	dispatcher, dir, _ := newTestDispatcher()
	dir.Register(1, &recorder{})

	_, err := dispatcher.ToAll("broken", make(chan int))

	require.Error(t, err)
}
