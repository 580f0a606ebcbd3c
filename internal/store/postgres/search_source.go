package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/spotlight-project/spotlight/core/search"
)

// Materialized views provisioned by the migrations. Each carries one
// weighted tsvector column ("document") with a GIN index, plus the
// denormalized join columns a summary needs at read time.
const (
	ViewOfficers = "search_officers"
	ViewAgencies = "search_agencies"
	ViewUnits    = "search_units"
)

// AllViews lists every refreshable search view.
func AllViews() []string {
	return []string{ViewOfficers, ViewAgencies, ViewUnits}
}

const maxCandidatesPerView = 200

type viewSpec struct {
	name string
	kind search.Kind

	// titleColumn feeds Match.Name; extraColumns feed Match.Fields under the
	// same names.
	titleColumn  string
	extraColumns []string

	// filterColumns whitelists pushdown-filterable request fields and maps
	// them to view columns.
	filterColumns map[string]string
}

var viewSpecs = []viewSpec{
	{
		name:         ViewOfficers,
		kind:         search.KindOfficer,
		titleColumn:  "full_name",
		extraColumns: []string{"badge_number", "rank", "unit_name", "agency_name"},
		filterColumns: map[string]string{
			"agency_id": "agency_id",
			"rank":      "rank",
		},
	},
	{
		name:         ViewAgencies,
		kind:         search.KindAgency,
		titleColumn:  "name",
		extraColumns: []string{"city", "state"},
		filterColumns: map[string]string{
			"state": "state",
		},
	},
	{
		name:         ViewUnits,
		kind:         search.KindUnit,
		titleColumn:  "name",
		extraColumns: []string{"agency_name", "agency_id"},
		filterColumns: map[string]string{
			"agency_id": "agency_id",
		},
	},
}

// ViewSource answers search sub-queries from one materialized view using its
// precomputed weighted tsvector. One ViewSource per view keeps the fanout's
// one-sub-query-per-view contract.
type ViewSource struct {
	client *Client
	spec   viewSpec
}

// NewViewSources returns one source per provisioned search view.
func NewViewSources(c *Client) ([]*ViewSource, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	sources := make([]*ViewSource, len(viewSpecs))
	for i, spec := range viewSpecs {
		sources[i] = &ViewSource{client: c, spec: spec}
	}
	return sources, nil
}

func (s *ViewSource) Name() string {
	return "postgres/" + s.spec.name
}

// Search ranks rows whose weighted document vector matches the tokenized
// term. Filters are applied inside the query, before ranking, so filtered-out
// rows never displace legitimate candidates.
func (s *ViewSource) Search(ctx context.Context, term string, filters search.Filter) ([]search.Match, error) {
	// The score alias must not shadow any view column ("rank" is a real
	// column on search_officers).
	columns := []string{"v.id", "v." + s.spec.titleColumn + " AS title", "v.updated_at",
		"ts_rank(v.document, q.query) AS score"}
	for _, col := range s.spec.extraColumns {
		columns = append(columns, "v."+col)
	}

	builder := sq.Select(columns...).
		From(s.spec.name + " v").
		CrossJoin("plainto_tsquery('english', ?) q (query)", term).
		Where("v.document @@ q.query").
		OrderBy("score DESC", "v.id ASC").
		Limit(maxCandidatesPerView)

	for field, values := range filters {
		col, ok := s.spec.filterColumns[field]
		if !ok {
			// Filters on fields this view does not carry cannot match any of
			// its rows.
			return nil, nil
		}
		builder = builder.Where(sq.Eq{"v." + col: values})
	}

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build view search query: %w", err)
	}

	rows, err := s.client.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search view %q: %w", s.spec.name, err)
	}
	defer rows.Close()

	var matches []search.Match
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan view search row: %w", err)
		}

		m := search.Match{
			ID:     stringAt(row, "id"),
			Kind:   s.spec.kind,
			Name:   stringAt(row, "title"),
			Score:  floatAt(row, "score"),
			Fields: make(map[string]string, len(s.spec.extraColumns)),
			Source: s.Name(),
		}
		if ts, ok := row["updated_at"].(time.Time); ok {
			m.UpdatedAt = ts
		}
		for _, col := range s.spec.extraColumns {
			if v := stringAt(row, col); v != "" {
				m.Fields[col] = v
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func stringAt(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case sql.NullString:
		return v.String
	}
	return ""
}

func floatAt(row map[string]interface{}, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return 0
}

// ViewRefresher rebuilds search views without blocking readers: CONCURRENTLY
// swaps in the new snapshot while queries keep seeing the old one.
type ViewRefresher struct {
	client *Client
}

func NewViewRefresher(c *Client) (*ViewRefresher, error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	return &ViewRefresher{client: c}, nil
}

// RefreshView refreshes one known view by name. Unknown names are rejected
// rather than interpolated into SQL.
func (r *ViewRefresher) RefreshView(ctx context.Context, name string) error {
	known := false
	for _, v := range AllViews() {
		if v == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("refresh view: unknown view %q", name)
	}

	if _, err := r.client.ExecContext(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY "+name); err != nil {
		return fmt.Errorf("refresh view %q: %w", name, err)
	}
	return nil
}
