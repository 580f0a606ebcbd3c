package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/spotlight-project/spotlight/core/agency"
)

type AgencyRepository struct {
	client *Client
}

func NewAgencyRepository(c *Client) (*AgencyRepository, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	return &AgencyRepository{client: c}, nil
}

type agencyModel struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (m agencyModel) toAgency() agency.Agency {
	return agency.Agency{
		ID:        m.ID,
		Name:      m.Name,
		City:      m.City.String,
		State:     m.State.String,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *AgencyRepository) GetAll(ctx context.Context, flt agency.Filter) ([]agency.Agency, error) {
	builder := sq.Select("id", "name", "city", "state", "created_at", "updated_at").
		From("agencies")

	if len(flt.States) > 0 {
		builder = builder.Where(sq.Eq{"state": flt.States})
	}

	size := flt.Size
	if size <= 0 || size > DefaultMaxResultSize {
		size = DefaultMaxResultSize
	}
	builder = builder.Limit(uint64(size)).Offset(uint64(flt.Offset))

	sortBy := flt.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	dir := "ASC"
	if strings.EqualFold(flt.SortDirection, "desc") {
		dir = "DESC"
	}
	builder = builder.OrderBy(fmt.Sprintf("%s %s", sortBy, dir))

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get all agencies query: %w", err)
	}

	var models []agencyModel
	if err := r.client.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("get all agencies: %w", err)
	}

	agencies := make([]agency.Agency, len(models))
	for i, m := range models {
		agencies[i] = m.toAgency()
	}
	return agencies, nil
}

func (r *AgencyRepository) GetByID(ctx context.Context, id string) (agency.Agency, error) {
	if !isValidUUID(id) {
		return agency.Agency{}, agency.NotFoundError{AgencyID: id}
	}

	var m agencyModel
	if err := r.client.GetContext(ctx, &m, `
		SELECT id, name, city, state, created_at, updated_at FROM agencies WHERE id = $1
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agency.Agency{}, agency.NotFoundError{AgencyID: id}
		}
		return agency.Agency{}, err
	}
	return m.toAgency(), nil
}

func (r *AgencyRepository) Upsert(ctx context.Context, a *agency.Agency) (string, error) {
	if a == nil {
		return "", agency.ErrNilAgency
	}

	var id string
	err := r.client.QueryRowxContext(ctx, `
		INSERT INTO agencies (id, name, city, state, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), uuid_generate_v4()::text)::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = $2, city = NULLIF($3, ''), state = NULLIF($4, ''), updated_at = NOW()
		RETURNING id
	`, a.ID, a.Name, a.City, a.State).Scan(&id)
	if err != nil {
		return "", checkPostgresError(err)
	}
	return id, nil
}

func (r *AgencyRepository) DeleteByID(ctx context.Context, id string) error {
	if !isValidUUID(id) {
		return agency.NotFoundError{AgencyID: id}
	}

	res, err := r.client.ExecContext(ctx, `DELETE FROM agencies WHERE id = $1`, id)
	if err != nil {
		return checkPostgresError(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return agency.NotFoundError{AgencyID: id}
	}
	return nil
}

// UnitRepository manages command units in the primary database.
type UnitRepository struct {
	client *Client
}

func NewUnitRepository(c *Client) (*UnitRepository, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	return &UnitRepository{client: c}, nil
}

type unitModel struct {
	ID          string         `db:"id"`
	AgencyID    string         `db:"agency_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m unitModel) toUnit() agency.Unit {
	return agency.Unit{
		ID:          m.ID,
		AgencyID:    m.AgencyID,
		Name:        m.Name,
		Description: m.Description.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *UnitRepository) GetByID(ctx context.Context, id string) (agency.Unit, error) {
	if !isValidUUID(id) {
		return agency.Unit{}, agency.NotFoundError{UnitID: id}
	}

	var m unitModel
	if err := r.client.GetContext(ctx, &m, `
		SELECT id, agency_id, name, description, created_at, updated_at FROM units WHERE id = $1
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agency.Unit{}, agency.NotFoundError{UnitID: id}
		}
		return agency.Unit{}, err
	}
	return m.toUnit(), nil
}

func (r *UnitRepository) GetByAgency(ctx context.Context, agencyID string) ([]agency.Unit, error) {
	var models []unitModel
	if err := r.client.SelectContext(ctx, &models, `
		SELECT id, agency_id, name, description, created_at, updated_at
		FROM units WHERE agency_id = $1 ORDER BY name ASC
	`, agencyID); err != nil {
		return nil, fmt.Errorf("get units by agency: %w", err)
	}

	units := make([]agency.Unit, len(models))
	for i, m := range models {
		units[i] = m.toUnit()
	}
	return units, nil
}

func (r *UnitRepository) Upsert(ctx context.Context, u *agency.Unit) (string, error) {
	if u == nil {
		return "", agency.ErrNilUnit
	}

	var id string
	err := r.client.QueryRowxContext(ctx, `
		INSERT INTO units (id, agency_id, name, description, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), uuid_generate_v4()::text)::uuid, $2, $3, NULLIF($4, ''), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			agency_id = $2, name = $3, description = NULLIF($4, ''), updated_at = NOW()
		RETURNING id
	`, u.ID, u.AgencyID, u.Name, u.Description).Scan(&id)
	if err != nil {
		return "", checkPostgresError(err)
	}
	return id, nil
}

func (r *UnitRepository) DeleteByID(ctx context.Context, id string) error {
	if !isValidUUID(id) {
		return agency.NotFoundError{UnitID: id}
	}

	res, err := r.client.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return checkPostgresError(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return agency.NotFoundError{UnitID: id}
	}
	return nil
}
