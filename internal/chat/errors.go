package chat

import (
	"errors"
	"fmt"
	"net/http"
)

// Widget errors.
var (
	ErrInert          = errors.New("chat widget is inert: host container missing")
	ErrNotOpen        = errors.New("no conversation is open")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrSendInProgress = errors.New("a message is already being sent")
	ErrDestroyed      = errors.New("chat widget destroyed")
)

// StatusError reports a non-2xx response from the messages API.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Notices shown to the user. Never include raw error detail here.
const (
	noticeFetchFailed = "Could not load messages. Retrying shortly."
	noticeSendFailed  = "Message could not be sent. Please try again."
)

func noticeTooLong(max int) string {
	return fmt.Sprintf("Message is too long (max %d characters)", max)
}
