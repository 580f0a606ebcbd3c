package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotlight-project/spotlight/core/search"
)

type stubSource struct {
	name    string
	matches []search.Match
	err     error
	delay   time.Duration
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Search(ctx context.Context, _ string, _ search.Filter) ([]search.Match, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func officerMatch(id string, score float64) search.Match {
	return search.Match{
		ID:    id,
		Kind:  search.KindOfficer,
		Name:  "Officer " + id,
		Score: score,
	}
}

func newService(t *testing.T, timeout time.Duration, sources ...search.Source) *search.Service {
	t.Helper()
	return search.NewService(search.ServiceDeps{
		Sources:       sources,
		SourceTimeout: timeout,
		Logger:        log.NewNoop(),
	})
}

func TestServiceSearchEmptyTerm(t *testing.T) {
	svc := newService(t, 0, stubSource{name: "a"})

	_, err := svc.Search(context.Background(), search.Request{Term: "   "})
	assert.ErrorIs(t, err, search.ErrEmptyTerm)
}

func TestServiceSearchBlankFilterField(t *testing.T) {
	svc := newService(t, 0, stubSource{name: "a"})

	_, err := svc.Search(context.Background(), search.Request{
		Term:    "john",
		Filters: search.Filter{" ": {"x"}},
	})

	var filterErr search.InvalidFilterError
	assert.ErrorAs(t, err, &filterErr)
}

func TestServiceSearchSingleMatch(t *testing.T) {
	svc := newService(t, 0, stubSource{
		name: "officers",
		matches: []search.Match{{
			ID:    "off-1",
			Kind:  search.KindOfficer,
			Name:  "John Doe",
			Score: 0.42,
		}},
	})

	pg, err := svc.Search(context.Background(), search.Request{Term: "john"})
	require.NoError(t, err)
	require.Len(t, pg.Results, 1)
	assert.Equal(t, "John Doe", pg.Results[0].Title)
	assert.Equal(t, search.KindOfficer, pg.Results[0].ContentType)
	assert.Equal(t, 1, pg.Total)
}

func TestServiceSearchDedupesAcrossSources(t *testing.T) {
	// Both sources return off-1; the merged set keeps one entry with the
	// better normalized score.
	svc := newService(t, 0,
		stubSource{name: "views", matches: []search.Match{
			officerMatch("off-1", 0.9),
			officerMatch("off-2", 0.1),
		}},
		stubSource{name: "fts", matches: []search.Match{
			officerMatch("off-1", 4.0),
		}},
	)

	pg, err := svc.Search(context.Background(), search.Request{Term: "doe"})
	require.NoError(t, err)
	assert.Equal(t, 2, pg.Total)

	ids := make(map[string]int)
	for _, res := range pg.Results {
		ids[res.ID]++
	}
	assert.Equal(t, map[string]int{"off-1": 1, "off-2": 1}, ids)
}

func TestServiceSearchNormalizesPerSource(t *testing.T) {
	// Source scales differ wildly; normalization keeps each source's best at
	// 1.0 so neither dominates by formula alone.
	svc := newService(t, 0,
		stubSource{name: "views", matches: []search.Match{
			officerMatch("v-hi", 0.02),
			officerMatch("v-lo", 0.01),
		}},
		stubSource{name: "fts", matches: []search.Match{
			officerMatch("f-hi", 900),
			officerMatch("f-lo", 300),
		}},
	)

	pg, err := svc.Search(context.Background(), search.Request{Term: "x"})
	require.NoError(t, err)
	require.Len(t, pg.Results, 4)

	scores := map[string]float64{}
	for _, res := range pg.Results {
		scores[res.ID] = res.Score
	}
	assert.Equal(t, 1.0, scores["v-hi"])
	assert.Equal(t, 1.0, scores["f-hi"])
	assert.Equal(t, 0.0, scores["v-lo"])
	assert.Equal(t, 0.0, scores["f-lo"])
}

func TestServiceSearchDeterministicOrdering(t *testing.T) {
	// Equal scores tie-break on ID so pagination over unchanged data is
	// stable across calls.
	src := stubSource{name: "views", matches: []search.Match{
		officerMatch("c", 1),
		officerMatch("a", 1),
		officerMatch("b", 1),
	}}
	svc := newService(t, 0, src)

	var first []string
	for i := 0; i < 5; i++ {
		pg, err := svc.Search(context.Background(), search.Request{Term: "x"})
		require.NoError(t, err)

		ids := make([]string, len(pg.Results))
		for j, res := range pg.Results {
			ids[j] = res.ID
		}
		if first == nil {
			first = ids
			assert.Equal(t, []string{"a", "b", "c"}, ids)
			continue
		}
		assert.Equal(t, first, ids)
	}
}

func TestServiceSearchPaginatesMergedSet(t *testing.T) {
	svc := newService(t, 0,
		stubSource{name: "views", matches: []search.Match{
			officerMatch("a", 5),
			officerMatch("b", 4),
			officerMatch("c", 3),
		}},
		stubSource{name: "fts", matches: []search.Match{
			officerMatch("d", 2),
			officerMatch("e", 1),
		}},
	)

	pg, err := svc.Search(context.Background(), search.Request{Term: "x", Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, pg.Total)
	assert.Equal(t, 2, pg.Page)
	require.Len(t, pg.Results, 2)

	pastEnd, err := svc.Search(context.Background(), search.Request{Term: "x", Page: 9, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, pastEnd.Results)
	assert.Equal(t, 5, pastEnd.Total)
}

func TestServiceSearchPartialDegradation(t *testing.T) {
	svc := newService(t, 50*time.Millisecond,
		stubSource{name: "slow", delay: time.Second},
		stubSource{name: "healthy", matches: []search.Match{officerMatch("off-1", 1)}},
	)

	pg, err := svc.Search(context.Background(), search.Request{Term: "x"})
	require.NoError(t, err)
	require.Len(t, pg.Results, 1)
	assert.Equal(t, "off-1", pg.Results[0].ID)
}

func TestServiceSearchAllSourcesDown(t *testing.T) {
	svc := newService(t, 50*time.Millisecond,
		stubSource{name: "slow", delay: time.Second},
		stubSource{name: "broken", err: assert.AnError},
	)

	_, err := svc.Search(context.Background(), search.Request{Term: "x"})

	var unavailable search.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ElementsMatch(t, []string{"slow", "broken"}, unavailable.Sources)
}

func TestServiceSearchPerPageBounds(t *testing.T) {
	matches := make([]search.Match, 150)
	for i := range matches {
		matches[i] = officerMatch(string(rune('a'))+string(rune('0'+i/10))+string(rune('0'+i%10)), float64(i))
	}
	svc := newService(t, 0, stubSource{name: "views", matches: matches})

	pg, err := svc.Search(context.Background(), search.Request{Term: "x"})
	require.NoError(t, err)
	assert.Len(t, pg.Results, 20)

	pg, err = svc.Search(context.Background(), search.Request{Term: "x", PerPage: 5000})
	require.NoError(t, err)
	assert.Len(t, pg.Results, 100)
	assert.Equal(t, 100, pg.PerPage)
}
