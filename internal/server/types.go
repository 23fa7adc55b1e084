package server

import (
	"errors"
	"strings"
)

var (
	// ErrSendBufferFull is returned when a client cannot keep up with its
	// outbound traffic. The client is disconnected.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrConnectionClosed is returned when sending to a client that has been
	// unregistered.
	ErrConnectionClosed = errors.New("connection closed")
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
