package bleve

import (
	"context"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/spotlight-project/spotlight/core/search"
)

type sourceSpec struct {
	kind       search.Kind
	titleField string

	// boosts lists the searchable fields. Identity fields outweigh join
	// context, mirroring the weighting of the relational views.
	boosts map[string]float64

	filterFields map[string]bool
}

var sourceSpecs = []sourceSpec{
	{
		kind:       search.KindOfficer,
		titleField: "full_name",
		boosts: map[string]float64{
			"full_name":    3.0,
			"badge_number": 3.0,
			"unit_name":    1.0,
			"agency_name":  1.0,
		},
		filterFields: map[string]bool{"agency_id": true, "rank": true},
	},
	{
		kind:       search.KindAgency,
		titleField: "name",
		boosts: map[string]float64{
			"name":  3.0,
			"city":  2.0,
			"state": 1.0,
		},
		filterFields: map[string]bool{"state": true},
	},
	{
		kind:       search.KindUnit,
		titleField: "name",
		boosts: map[string]float64{
			"name":        3.0,
			"description": 2.0,
			"agency_name": 1.0,
		},
		filterFields: map[string]bool{"agency_id": true},
	},
}

const maxCandidatesPerIndex = 200

// Source answers search sub-queries from one kind's bleve index.
type Source struct {
	repo *Repository
	spec sourceSpec
}

// Sources returns one search source per index the repository maintains.
func Sources(repo *Repository) []*Source {
	sources := make([]*Source, len(sourceSpecs))
	for i, spec := range sourceSpecs {
		sources[i] = &Source{repo: repo, spec: spec}
	}
	return sources
}

func (s *Source) Name() string {
	return "bleve/" + string(s.spec.kind)
}

// Search matches the tokenized term against this kind's fields. Filters
// become exact-term conjuncts so they narrow the candidate set before
// scoring, the same contract the relational sources keep.
func (s *Source) Search(ctx context.Context, term string, filters search.Filter) ([]search.Match, error) {
	idx, err := s.repo.index(s.spec.kind)
	if err != nil {
		return nil, err
	}

	conjuncts := []query.Query{s.termQuery(term)}
	for field, values := range filters {
		if !s.spec.filterFields[field] {
			// This index does not carry the field, so nothing in it can
			// satisfy the filter.
			return nil, nil
		}
		anyOf := bleve.NewDisjunctionQuery()
		for _, v := range values {
			tq := bleve.NewTermQuery(v)
			tq.SetField(field)
			anyOf.AddQuery(tq)
		}
		conjuncts = append(conjuncts, anyOf)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), maxCandidatesPerIndex, 0, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"-_score", "_id"})

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s index: %w", s.spec.kind, err)
	}

	matches := make([]search.Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		m := search.Match{
			ID:     hit.ID,
			Kind:   s.spec.kind,
			Score:  hit.Score,
			Fields: map[string]string{},
			Source: s.Name(),
		}
		for field, value := range hit.Fields {
			str, ok := value.(string)
			if !ok || str == "" {
				continue
			}
			switch field {
			case s.spec.titleField:
				m.Name = str
			case "updated_at":
				if ts, err := time.Parse(time.RFC3339, str); err == nil {
					m.UpdatedAt = ts
				}
			default:
				m.Fields[field] = str
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *Source) termQuery(term string) query.Query {
	anyField := bleve.NewDisjunctionQuery()
	for field, boost := range s.spec.boosts {
		mq := bleve.NewMatchQuery(term)
		mq.SetField(field)
		mq.SetBoost(boost)
		anyField.AddQuery(mq)
	}
	return anyField
}
