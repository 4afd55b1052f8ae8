package entity

import (
	"errors"
	"fmt"
)

// Error taxonomy for the chat core. Callers classify with errors.Is.
var (
	// ErrValidation marks requests rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks operations referencing a conversation or message that
	// does not exist. Never silently ignored.
	ErrNotFound = errors.New("not found")
	// ErrTransport marks a temporarily unreachable store or channel.
	ErrTransport = errors.New("transport unavailable")
	// ErrUpload marks a rejected or failed attachment upload.
	ErrUpload = errors.New("upload failed")
)

// ValidationError wraps ErrValidation with a reason.
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError wraps ErrNotFound with the missing resource.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}
