package search

import (
	"context"
	"time"
)

// Kind tags the entity family a match belongs to. It selects the summary
// builder used to render the match; matches with an unregistered kind are
// dropped from the page rather than failing it.
type Kind string

const (
	KindOfficer Kind = "Officer"
	KindAgency  Kind = "Agency"
	KindUnit    Kind = "Unit"
)

// Filter maps a field name to accepted values. Filters are pushed down to
// every source as a conjunctive pre-filter before scoring.
type Filter = map[string][]string

// Request is a single cross-entity search call. Page and PerPage apply to the
// merged, ranked candidate set, never to individual sources.
type Request struct {
	Term    string
	Filters Filter
	Page    int
	PerPage int
}

// Match is one raw scored hit from a source. Fields carries the denormalized
// join legs a summary builder needs (agency_name, unit_name, rank, city...);
// missing legs are simply absent keys.
type Match struct {
	ID        string
	Kind      Kind
	Name      string
	Score     float64
	Fields    map[string]string
	UpdatedAt time.Time
	Source    string
}

// Source is one independently maintained full-text index that can answer a
// term query. The fanout ranker is agnostic to the backing technology; adding
// an index family means adding Source implementations, not ranker changes.
type Source interface {
	Name() string
	Search(ctx context.Context, term string, filters Filter) ([]Match, error)
}

// Result is the display shape of one ranked match.
type Result struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	ContentType Kind      `json:"content_type"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"last_updated"`
	Href        string    `json:"href"`
	Score       float64   `json:"score"`
}

// Page is the merged, ranked slice of results for one request.
type Page struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}
