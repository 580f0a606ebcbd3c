package postgres

import (
	"errors"

	"github.com/google/uuid"
)

var (
	errNilPostgresClient   = errors.New("postgres client is nil")
	errDuplicateKey        = errors.New("duplicate key")
	errCheckViolation      = errors.New("check constraint violation")
	errForeignKeyViolation = errors.New("foreign key violation")
)

// isValidUUID screens id lookups so a malformed id reads as a missing row
// instead of a uuid cast error from the database.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
