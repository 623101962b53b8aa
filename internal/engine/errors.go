package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks problems with the request itself: an empty query,
// an unsupported export format or a file that is not a CSV.
var ErrInvalidInput = errors.New("invalid input")

// ForbiddenError is returned when the guard blocks a query.
type ForbiddenError struct {
	Keyword string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("dangerous query blocked: %s is not allowed", e.Keyword)
}

// QueryError is returned by operations that cannot report an engine failure
// as a normal payload, such as Export.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
