package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/spotlight-project/spotlight/core/search"
)

// Config contains bleve store configurations.
type Config struct {
	// Path is the directory holding one index per document kind. Empty runs
	// the indexes in memory, which is what tests and the dev server use.
	Path string `yaml:"path" mapstructure:"path"`
}

var errNilIndex = errors.New("bleve index is nil")

// OfficerDocument is the indexed projection of an officer and their
// canonical employment.
type OfficerDocument struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	BadgeNumber string    `json:"badge_number"`
	Rank        string    `json:"rank"`
	UnitName    string    `json:"unit_name"`
	AgencyID    string    `json:"agency_id"`
	AgencyName  string    `json:"agency_name"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgencyDocument is the indexed projection of an agency.
type AgencyDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitDocument is the indexed projection of a unit within its agency.
type UnitDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AgencyID    string    `json:"agency_id"`
	AgencyName  string    `json:"agency_name"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository maintains one bleve index per searchable kind and keeps each
// index in step with the system of record, one document at a time.
type Repository struct {
	indexes map[search.Kind]bleve.Index
}

// NewRepository opens (or creates) the indexes under cfg.Path, or builds
// memory-only indexes when the path is empty.
func NewRepository(cfg Config) (*Repository, error) {
	repo := &Repository{indexes: map[search.Kind]bleve.Index{}}
	for kind, im := range indexMappings() {
		idx, err := openIndex(cfg.Path, kind, im)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("open %s index: %w", kind, err)
		}
		repo.indexes[kind] = idx
	}
	return repo, nil
}

func openIndex(path string, kind search.Kind, im mapping.IndexMapping) (bleve.Index, error) {
	if path == "" {
		return bleve.NewMemOnly(im)
	}
	dir := filepath.Join(path, string(kind))
	idx, err := bleve.Open(dir)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
			return nil, mkErr
		}
		return bleve.New(dir, im)
	}
	return idx, err
}

func indexMappings() map[search.Kind]mapping.IndexMapping {
	return map[search.Kind]mapping.IndexMapping{
		search.KindOfficer: documentMapping(map[string]string{
			"full_name":    en.AnalyzerName,
			"badge_number": keyword.Name,
			"rank":         keyword.Name,
			"unit_name":    en.AnalyzerName,
			"agency_id":    keyword.Name,
			"agency_name":  en.AnalyzerName,
		}),
		search.KindAgency: documentMapping(map[string]string{
			"name":  en.AnalyzerName,
			"city":  en.AnalyzerName,
			"state": keyword.Name,
		}),
		search.KindUnit: documentMapping(map[string]string{
			"name":        en.AnalyzerName,
			"description": en.AnalyzerName,
			"agency_id":   keyword.Name,
			"agency_name": en.AnalyzerName,
		}),
	}
}

func documentMapping(fields map[string]string) mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	for field, analyzer := range fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = true
		doc.AddFieldMappingsAt(field, fm)
	}
	updated := bleve.NewDateTimeFieldMapping()
	updated.Store = true
	doc.AddFieldMappingsAt("updated_at", updated)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

func (r *Repository) index(kind search.Kind) (bleve.Index, error) {
	idx, ok := r.indexes[kind]
	if !ok || idx == nil {
		return nil, errNilIndex
	}
	return idx, nil
}

func (r *Repository) IndexOfficer(ctx context.Context, doc OfficerDocument) error {
	return r.upsert(ctx, search.KindOfficer, doc.ID, doc)
}

func (r *Repository) DeleteOfficer(ctx context.Context, id string) error {
	return r.delete(ctx, search.KindOfficer, id)
}

func (r *Repository) IndexAgency(ctx context.Context, doc AgencyDocument) error {
	return r.upsert(ctx, search.KindAgency, doc.ID, doc)
}

func (r *Repository) DeleteAgency(ctx context.Context, id string) error {
	return r.delete(ctx, search.KindAgency, id)
}

func (r *Repository) IndexUnit(ctx context.Context, doc UnitDocument) error {
	return r.upsert(ctx, search.KindUnit, doc.ID, doc)
}

func (r *Repository) DeleteUnit(ctx context.Context, id string) error {
	return r.delete(ctx, search.KindUnit, id)
}

func (r *Repository) upsert(ctx context.Context, kind search.Kind, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("index %s document: empty id", kind)
	}
	idx, err := r.index(kind)
	if err != nil {
		return err
	}
	if err := idx.Index(id, doc); err != nil {
		return fmt.Errorf("index %s document %q: %w", kind, id, err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, kind search.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := r.index(kind)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		return fmt.Errorf("delete %s document %q: %w", kind, id, err)
	}
	return nil
}

// Close closes every open index. Safe to call with partially opened state.
func (r *Repository) Close() error {
	var firstErr error
	for _, idx := range r.indexes {
		if idx == nil {
			continue
		}
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
