package employment

import (
	"context"
	"time"

	"github.com/spotlight-project/spotlight/core/officer"
)

type Repository interface {
	// GetByOfficerAgency returns all raw records for the pair, ordered by
	// reporting priority (most recently ingested batch first). Reconcile
	// relies on this ordering for first-record field selection.
	GetByOfficerAgency(ctx context.Context, officerID, agencyID string) ([]Record, error)
	Upsert(ctx context.Context, rec *Record) (string, error)
	DeleteByID(ctx context.Context, id string) error

	GetCanonical(ctx context.Context, officerID, agencyID string) (CanonicalRecord, error)
	// GetCanonicalByOfficer returns the officer's canonical records across
	// agencies, current employments first, then most recent tenure first.
	GetCanonicalByOfficer(ctx context.Context, officerID string) ([]CanonicalRecord, error)
	UpsertCanonical(ctx context.Context, rec CanonicalRecord) error
	DeleteCanonical(ctx context.Context, officerID, agencyID string) error
}

// Record is one reported span of an officer's tenure at an agency. Multiple
// records for the same (officer, agency) pair are expected; each reporting
// batch contributes its own.
type Record struct {
	ID                string        `json:"id"`
	OfficerID         string        `json:"officer_id"`
	AgencyID          string        `json:"agency_id"`
	UnitID            string        `json:"unit_id,omitempty"`
	BadgeNumber       string        `json:"badge_number,omitempty"`
	EarliestDate      *time.Time    `json:"earliest_date,omitempty"`
	LatestDate        *time.Time    `json:"latest_date,omitempty"`
	HighestRank       *officer.Rank `json:"highest_rank,omitempty"`
	CurrentlyEmployed bool          `json:"currently_employed"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// CanonicalRecord is the reconciled summary of all raw records for one
// (officer, agency) pair. It is derived state: regenerated whenever a
// contributing raw record changes.
type CanonicalRecord struct {
	OfficerID         string        `json:"officer_id"`
	AgencyID          string        `json:"agency_id"`
	BadgeNumber       string        `json:"badge_number,omitempty"`
	EarliestDate      *time.Time    `json:"earliest_date,omitempty"`
	LatestDate        *time.Time    `json:"latest_date,omitempty"`
	HighestRank       *officer.Rank `json:"highest_rank,omitempty"`
	CurrentlyEmployed bool          `json:"currently_employed"`
}
