package officer

import (
	"context"
	"strings"
	"time"
)

type Repository interface {
	GetAll(ctx context.Context, flt Filter) ([]Officer, error)
	GetByID(ctx context.Context, id string) (Officer, error)
	Upsert(ctx context.Context, o *Officer) (string, error)
	DeleteByID(ctx context.Context, id string) error
}

// Officer is a sworn member of a law enforcement agency. The searchable
// surface is the name parts and the badge number; agency and unit context
// comes from the officer's employment records.
type Officer struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	MiddleName  string    `json:"middle_name,omitempty"`
	LastName    string    `json:"last_name"`
	BadgeNumber string    `json:"badge_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins the non-empty name parts with single spaces.
func (o Officer) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.FirstName, o.MiddleName, o.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
