package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/spotlight-project/spotlight/core/officer"
)

// OfficerRepository manages officer rows in the primary database.
type OfficerRepository struct {
	client *Client
}

func NewOfficerRepository(c *Client) (*OfficerRepository, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	return &OfficerRepository{client: c}, nil
}

type officerModel struct {
	ID          string         `db:"id"`
	FirstName   string         `db:"first_name"`
	MiddleName  sql.NullString `db:"middle_name"`
	LastName    string         `db:"last_name"`
	BadgeNumber sql.NullString `db:"badge_number"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m officerModel) toOfficer() officer.Officer {
	return officer.Officer{
		ID:          m.ID,
		FirstName:   m.FirstName,
		MiddleName:  m.MiddleName.String,
		LastName:    m.LastName,
		BadgeNumber: m.BadgeNumber.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *OfficerRepository) GetAll(ctx context.Context, flt officer.Filter) ([]officer.Officer, error) {
	builder := sq.Select("o.id", "o.first_name", "o.middle_name", "o.last_name", "o.badge_number", "o.created_at", "o.updated_at").
		From("officers o")

	if len(flt.AgencyIDs) > 0 {
		builder = builder.
			Join("employment_records er ON er.officer_id = o.id").
			Where(sq.Eq{"er.agency_id": flt.AgencyIDs}).
			Distinct()
	}

	size := flt.Size
	if size <= 0 || size > DefaultMaxResultSize {
		size = DefaultMaxResultSize
	}
	builder = builder.Limit(uint64(size)).Offset(uint64(flt.Offset))

	sortBy := flt.SortBy
	if sortBy == "" {
		sortBy = "last_name"
	}
	dir := "ASC"
	if strings.EqualFold(flt.SortDirection, "desc") {
		dir = "DESC"
	}
	builder = builder.OrderBy(fmt.Sprintf("o.%s %s", sortBy, dir))

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get all officers query: %w", err)
	}

	var models []officerModel
	if err := r.client.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("get all officers: %w", err)
	}

	officers := make([]officer.Officer, len(models))
	for i, m := range models {
		officers[i] = m.toOfficer()
	}
	return officers, nil
}

func (r *OfficerRepository) GetByID(ctx context.Context, id string) (officer.Officer, error) {
	if !isValidUUID(id) {
		return officer.Officer{}, officer.NotFoundError{OfficerID: id}
	}

	var m officerModel
	if err := r.client.GetContext(ctx, &m, `
		SELECT id, first_name, middle_name, last_name, badge_number, created_at, updated_at
		FROM officers WHERE id = $1
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return officer.Officer{}, officer.NotFoundError{OfficerID: id}
		}
		return officer.Officer{}, err
	}
	return m.toOfficer(), nil
}

func (r *OfficerRepository) Upsert(ctx context.Context, o *officer.Officer) (string, error) {
	if o == nil {
		return "", officer.ErrNilOfficer
	}

	var id string
	err := r.client.QueryRowxContext(ctx, `
		INSERT INTO officers (id, first_name, middle_name, last_name, badge_number, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), uuid_generate_v4()::text)::uuid, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			first_name = $2, middle_name = NULLIF($3, ''), last_name = $4,
			badge_number = NULLIF($5, ''), updated_at = NOW()
		RETURNING id
	`, o.ID, o.FirstName, o.MiddleName, o.LastName, o.BadgeNumber).Scan(&id)
	if err != nil {
		return "", checkPostgresError(err)
	}
	return id, nil
}

func (r *OfficerRepository) DeleteByID(ctx context.Context, id string) error {
	if !isValidUUID(id) {
		return officer.NotFoundError{OfficerID: id}
	}

	res, err := r.client.ExecContext(ctx, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return checkPostgresError(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return officer.NotFoundError{OfficerID: id}
	}
	return nil
}
