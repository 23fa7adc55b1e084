// Package server implements the HTTP and WebSocket transport of the chat
// service.
//
// A single Hub goroutine owns all chat state. Each accepted connection gets
// a Client with a read pump that feeds inbound frames to the hub and a write
// pump that drains the client's buffered outbound channel.
package server
