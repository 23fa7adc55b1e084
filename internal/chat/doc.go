// Package chat implements the in-memory core of the chat service: the
// connection Directory, the Room Store, the Presence Tracker, the Message
// Router and the Broadcast Dispatcher.
//
// None of the types in this package are safe for concurrent use. All state
// is owned by a single caller (the server hub) that feeds events to the
// Router one at a time.
package chat
