package store

import "fmt"

// Error is a storage error with a stable message and an optional cause.
// Storage failures stay explicit inside the store layer; the service facade
// converts them to empty/zero defaults at the public boundary.
type Error struct {
	Message string // stable, user-facing message
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes sentinel-derived errors match their sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == e.Message
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	// ErrUnreadable marks a history file that exists but cannot be read.
	ErrUnreadable = &Error{Message: "history file unreadable"}

	// ErrCorrupt marks a history file whose content is not a JSON event
	// array. The store self-heals on the next successful write.
	ErrCorrupt = &Error{Message: "history file corrupt"}

	// ErrWriteFailed marks a failed rewrite of the history file.
	ErrWriteFailed = &Error{Message: "history file write failed"}

	// ErrSongNotFound marks a catalog miss.
	ErrSongNotFound = &Error{Message: "song not found"}
)
