package query

import (
	"errors"
	"fmt"
)

// ErrChatNotFound is returned when a chat scope names a slug that does not
// exist in the archive.
var ErrChatNotFound = errors.New("chat not found")

// ErrMessageNotFound is returned by GetMessage for an unknown primary key.
var ErrMessageNotFound = errors.New("message not found")

// UnsupportedSortError reports a sort field outside the whitelist for the
// requested view. The field name never reaches SQL text.
type UnsupportedSortError struct {
	Field SortField
	View  View
}

func (e *UnsupportedSortError) Error() string {
	return fmt.Sprintf("unsupported sort field %q for %s view", e.Field, e.View)
}

// QueryError wraps an execution or connectivity failure. Its message is
// generic and safe to surface; the underlying driver error stays on the
// wrap chain for logging.
type QueryError struct {
	Op  string // logical operation, e.g. "filtered query"
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func queryErr(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}
