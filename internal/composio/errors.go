package composio

import (
	"errors"
	"fmt"
)

// ErrNoConnection indicates that no connected account exists for the
// requested app and entity. Callers use this to distinguish "needs user
// authorization" from a genuine API failure.
var ErrNoConnection = errors.New("no connected account found")

// Error describes a failed Composio API operation.
type Error struct {
	// Op is the operation that failed: "getConnection", "initiateConnection", "executeAction"
	Op string
	// Target is the app or action the operation addressed (e.g., "GMAIL", "GMAIL_SEND_EMAIL")
	Target string
	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("composio %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
