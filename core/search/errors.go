package search

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyTerm = errors.New("search term cannot be empty")

// InvalidFilterError rejects a malformed filter synchronously; it is never
// retried.
type InvalidFilterError struct {
	Field string
}

func (err InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid search filter: %q", err.Field)
}

// UnavailableError is returned only when every source failed. A subset of
// sources failing degrades to partial results instead.
type UnavailableError struct {
	Sources []string
}

func (err UnavailableError) Error() string {
	return fmt.Sprintf("all search sources unavailable: %s", strings.Join(err.Sources, ", "))
}
