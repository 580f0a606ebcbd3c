package agency

import (
	"errors"
	"fmt"
)

var (
	ErrNilAgency = errors.New("nil agency")
	ErrNilUnit   = errors.New("nil unit")
	ErrEmptyName = errors.New("agency does not have a name")
)

type NotFoundError struct {
	AgencyID string
	UnitID   string
}

func (err NotFoundError) Error() string {
	switch {
	case err.AgencyID != "":
		return fmt.Sprintf("could not find agency with id = %s", err.AgencyID)
	case err.UnitID != "":
		return fmt.Sprintf("could not find unit with id = %s", err.UnitID)
	}
	return "could not find agency"
}
