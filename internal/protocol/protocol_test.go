package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
		wantErr  bool
	}{
		{name: "name payload", raw: `{"messageType":"chat-created","payload":"alice"}`, wantType: TypeChatCreated},
		{name: "object payload", raw: `{"messageType":"chat-message","payload":{"chatId":1}}`, wantType: TypeChatMessage},
		{name: "missing payload", raw: `{"messageType":"chat-created"}`, wantErr: true},
		{name: "null payload", raw: `{"messageType":"chat-created","payload": null }`, wantErr: true},
		{name: "missing type", raw: `{"payload":"alice"}`, wantErr: true},
		{name: "numeric type", raw: `{"messageType":3,"payload":"alice"}`, wantErr: true},
		{name: "array frame", raw: `[1,2]`, wantErr: true},
		{name: "garbage", raw: `{{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.raw))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingField)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantType, env.MessageType)
		})
	}
}

func TestDecodeName(t *testing.T) {
	p, err := DecodeName([]byte(`"alice"`))
	require.NoError(t, err)
	require.Equal(t, "alice", p.Name)

	_, err = DecodeName([]byte(`""`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeName([]byte(`{"name":"alice"}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeMembership(t *testing.T) {
	p, err := DecodeMembership([]byte(`{"name":"bob","chatId":2}`))
	require.NoError(t, err)
	require.Equal(t, MembershipPayload{Name: "bob", ChatID: 2}, p)

	_, err = DecodeMembership([]byte(`{"name":"bob","chatId":0}`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeMembership([]byte(`{"chatId":1}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeChatMessage(t *testing.T) {
	p, err := DecodeChatMessage([]byte(`{"chatId":1,"from":"alice","text":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, ChatMessagePayload{ChatID: 1, From: "alice", Text: "hi"}, p)

	_, err = DecodeChatMessage([]byte(`{"chatId":"1","from":"alice","text":"hi"}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeGlobalMessage(t *testing.T) {
	_, err := DecodeGlobalMessage([]byte(`{"from":"alice"}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestEncode(t *testing.T) {
	data, err := Encode(TypeConnection, []string{})
	require.NoError(t, err)
	require.JSONEq(t, `{"messageType":"connection","payload":[]}`, string(data))
}
