package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
)

// EmploymentRepository manages raw employment records and the canonical
// summary cache.
type EmploymentRepository struct {
	client *Client
}

func NewEmploymentRepository(c *Client) (*EmploymentRepository, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	return &EmploymentRepository{client: c}, nil
}

type employmentModel struct {
	ID                string         `db:"id"`
	OfficerID         string         `db:"officer_id"`
	AgencyID          string         `db:"agency_id"`
	UnitID            sql.NullString `db:"unit_id"`
	BadgeNumber       sql.NullString `db:"badge_number"`
	EarliestDate      sql.NullTime   `db:"earliest_date"`
	LatestDate        sql.NullTime   `db:"latest_date"`
	HighestRank       sql.NullString `db:"highest_rank"`
	CurrentlyEmployed bool           `db:"currently_employed"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (m employmentModel) toRecord() employment.Record {
	rec := employment.Record{
		ID:                m.ID,
		OfficerID:         m.OfficerID,
		AgencyID:          m.AgencyID,
		UnitID:            m.UnitID.String,
		BadgeNumber:       m.BadgeNumber.String,
		CurrentlyEmployed: m.CurrentlyEmployed,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.EarliestDate.Valid {
		d := m.EarliestDate.Time
		rec.EarliestDate = &d
	}
	if m.LatestDate.Valid {
		d := m.LatestDate.Time
		rec.LatestDate = &d
	}
	if m.HighestRank.Valid {
		r := officer.Rank(m.HighestRank.String)
		rec.HighestRank = &r
	}
	return rec
}

// GetByOfficerAgency returns the raw records for a pair, most recently
// ingested batch first; the reconciler's first-record rules depend on this
// ordering.
func (r *EmploymentRepository) GetByOfficerAgency(ctx context.Context, officerID, agencyID string) ([]employment.Record, error) {
	var models []employmentModel
	if err := r.client.SelectContext(ctx, &models, `
		SELECT id, officer_id, agency_id, unit_id, badge_number, earliest_date, latest_date,
		       highest_rank, currently_employed, created_at, updated_at
		FROM employment_records
		WHERE officer_id = $1 AND agency_id = $2
		ORDER BY created_at DESC, id ASC
	`, officerID, agencyID); err != nil {
		return nil, fmt.Errorf("get employment records: %w", err)
	}

	records := make([]employment.Record, len(models))
	for i, m := range models {
		records[i] = m.toRecord()
	}
	return records, nil
}

func (r *EmploymentRepository) Upsert(ctx context.Context, rec *employment.Record) (string, error) {
	if rec == nil {
		return "", employment.ErrNilRecord
	}

	var rank interface{}
	if rec.HighestRank != nil {
		rank = rec.HighestRank.String()
	}

	var id string
	err := r.client.QueryRowxContext(ctx, `
		INSERT INTO employment_records
			(id, officer_id, agency_id, unit_id, badge_number, earliest_date, latest_date,
			 highest_rank, currently_employed, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), uuid_generate_v4()::text)::uuid, $2, $3,
		        NULLIF($4, '')::uuid, NULLIF($5, ''), $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			unit_id = NULLIF($4, '')::uuid, badge_number = NULLIF($5, ''),
			earliest_date = $6, latest_date = $7,
			highest_rank = $8, currently_employed = $9, updated_at = NOW()
		RETURNING id
	`, rec.ID, rec.OfficerID, rec.AgencyID, rec.UnitID, rec.BadgeNumber, rec.EarliestDate, rec.LatestDate, rank, rec.CurrentlyEmployed).Scan(&id)
	if err != nil {
		return "", checkPostgresError(err)
	}
	return id, nil
}

func (r *EmploymentRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.client.ExecContext(ctx, `DELETE FROM employment_records WHERE id = $1`, id)
	if err != nil {
		return checkPostgresError(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return employment.NotFoundError{}
	}
	return nil
}

type canonicalModel struct {
	OfficerID         string         `db:"officer_id"`
	AgencyID          string         `db:"agency_id"`
	BadgeNumber       sql.NullString `db:"badge_number"`
	EarliestDate      sql.NullTime   `db:"earliest_date"`
	LatestDate        sql.NullTime   `db:"latest_date"`
	HighestRank       sql.NullString `db:"highest_rank"`
	CurrentlyEmployed bool           `db:"currently_employed"`
}

func (m canonicalModel) toCanonical() employment.CanonicalRecord {
	rec := employment.CanonicalRecord{
		OfficerID:         m.OfficerID,
		AgencyID:          m.AgencyID,
		BadgeNumber:       m.BadgeNumber.String,
		CurrentlyEmployed: m.CurrentlyEmployed,
	}
	if m.EarliestDate.Valid {
		d := m.EarliestDate.Time
		rec.EarliestDate = &d
	}
	if m.LatestDate.Valid {
		d := m.LatestDate.Time
		rec.LatestDate = &d
	}
	if m.HighestRank.Valid {
		rk := officer.Rank(m.HighestRank.String)
		rec.HighestRank = &rk
	}
	return rec
}

func (r *EmploymentRepository) GetCanonical(ctx context.Context, officerID, agencyID string) (employment.CanonicalRecord, error) {
	var m canonicalModel
	if err := r.client.GetContext(ctx, &m, `
		SELECT officer_id, agency_id, badge_number, earliest_date, latest_date,
		       highest_rank, currently_employed
		FROM canonical_employment
		WHERE officer_id = $1 AND agency_id = $2
	`, officerID, agencyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employment.CanonicalRecord{}, employment.NotFoundError{OfficerID: officerID, AgencyID: agencyID}
		}
		return employment.CanonicalRecord{}, err
	}
	return m.toCanonical(), nil
}

// GetCanonicalByOfficer returns the officer's canonical records across
// agencies, preferring current employments, then most recent tenure.
func (r *EmploymentRepository) GetCanonicalByOfficer(ctx context.Context, officerID string) ([]employment.CanonicalRecord, error) {
	var models []canonicalModel
	if err := r.client.SelectContext(ctx, &models, `
		SELECT officer_id, agency_id, badge_number, earliest_date, latest_date,
		       highest_rank, currently_employed
		FROM canonical_employment
		WHERE officer_id = $1
		ORDER BY currently_employed DESC, latest_date DESC NULLS LAST, agency_id ASC
	`, officerID); err != nil {
		return nil, fmt.Errorf("get canonical employment records: %w", err)
	}

	records := make([]employment.CanonicalRecord, len(models))
	for i, m := range models {
		records[i] = m.toCanonical()
	}
	return records, nil
}

func (r *EmploymentRepository) UpsertCanonical(ctx context.Context, rec employment.CanonicalRecord) error {
	var rank interface{}
	if rec.HighestRank != nil {
		rank = rec.HighestRank.String()
	}

	_, err := r.client.ExecContext(ctx, `
		INSERT INTO canonical_employment
			(officer_id, agency_id, badge_number, earliest_date, latest_date,
			 highest_rank, currently_employed, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NOW())
		ON CONFLICT (officer_id, agency_id) DO UPDATE SET
			badge_number = NULLIF($3, ''), earliest_date = $4, latest_date = $5,
			highest_rank = $6, currently_employed = $7, updated_at = NOW()
	`, rec.OfficerID, rec.AgencyID, rec.BadgeNumber, rec.EarliestDate, rec.LatestDate, rank, rec.CurrentlyEmployed)
	return checkPostgresError(err)
}

func (r *EmploymentRepository) DeleteCanonical(ctx context.Context, officerID, agencyID string) error {
	_, err := r.client.ExecContext(ctx, `
		DELETE FROM canonical_employment WHERE officer_id = $1 AND agency_id = $2
	`, officerID, agencyID)
	return checkPostgresError(err)
}
