// Package testhelpers provides WebSocket client utilities shared by the
// end-to-end tests of the chat server.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// DefaultOrigin is the origin allowed by the default configuration.
const DefaultOrigin = "http://localhost:8080"

// Frame is a decoded outbound envelope.
type Frame struct {
	MessageType string          `json:"messageType"`
	Payload     json.RawMessage `json:"payload"`
}

// WebSocketURL converts an httptest server URL to its /ws endpoint.
func WebSocketURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
}

// ConnectWebSocket dials url with the given Origin header. The handshake
// response is returned so callers can assert on rejected upgrades.
func ConnectWebSocket(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// MustConnect dials url with DefaultOrigin, reads the connection snapshot
// and registers a cleanup that closes the connection.
func MustConnect(t *testing.T, url string) (*websocket.Conn, Frame) {
	t.Helper()
	conn, _, err := ConnectWebSocket(url, DefaultOrigin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseWebSocket(conn) })

	snapshot := ReadFrame(t, conn)
	require.Equal(t, "connection", snapshot.MessageType)
	return conn, snapshot
}

// SendEvent writes one envelope.
func SendEvent(t *testing.T, conn *websocket.Conn, messageType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"messageType": messageType,
		"payload":     payload,
	}))
}

// SendRaw writes a raw text frame.
func SendRaw(t *testing.T, conn *websocket.Conn, data string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(data)))
}

// ReadFrame reads the next envelope, failing the test after two seconds.
func ReadFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// ExpectNoFrame fails if a frame arrives within timeout. The connection
// should not be read from afterwards since a deadline error is sticky.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", data)
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}
