package chat

import "errors"

var (
	// ErrMalformedEvent marks an inbound event missing its type or payload.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnsupportedEventType marks an inbound event with an unknown type.
	ErrUnsupportedEventType = errors.New("unsupported event type")
	// ErrValidation marks an event whose payload failed validation.
	ErrValidation = errors.New("validation error")
	// ErrRoomNotFound marks an event referencing a room that does not exist.
	ErrRoomNotFound = errors.New("room not found")
)

// IsIgnorable reports whether err belongs to the classes that are dropped
// silently without any operator attention.
func IsIgnorable(err error) bool {
	return errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrRoomNotFound)
}
