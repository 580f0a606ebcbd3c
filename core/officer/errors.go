package officer

import (
	"errors"
	"fmt"
)

var (
	ErrNilOfficer = errors.New("nil officer")
	ErrEmptyID    = errors.New("officer does not have ID")
)

type NotFoundError struct {
	OfficerID string
}

func (err NotFoundError) Error() string {
	if err.OfficerID != "" {
		return fmt.Sprintf("could not find officer with id = %s", err.OfficerID)
	}
	return "could not find officer"
}

type InvalidError struct {
	OfficerID string
}

func (err InvalidError) Error() string {
	return fmt.Sprintf("invalid officer id: %q", err.OfficerID)
}
