package employment

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecords = errors.New("no employment records to reconcile")
	ErrNilRecord = errors.New("nil employment record")
)

type NotFoundError struct {
	OfficerID string
	AgencyID  string
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("could not find employment records for officer = %s, agency = %s", err.OfficerID, err.AgencyID)
}
