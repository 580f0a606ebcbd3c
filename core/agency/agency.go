package agency

import (
	"context"
	"time"
)

type Repository interface {
	GetAll(ctx context.Context, flt Filter) ([]Agency, error)
	GetByID(ctx context.Context, id string) (Agency, error)
	Upsert(ctx context.Context, a *Agency) (string, error)
	DeleteByID(ctx context.Context, id string) error
}

type UnitRepository interface {
	GetByID(ctx context.Context, id string) (Unit, error)
	GetByAgency(ctx context.Context, agencyID string) ([]Unit, error)
	Upsert(ctx context.Context, u *Unit) (string, error)
	DeleteByID(ctx context.Context, id string) error
}

// Agency is a law enforcement agency (police department, sheriff's office).
type Agency struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit is a command unit within an agency.
type Unit struct {
	ID          string    `json:"id"`
	AgencyID    string    `json:"agency_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
