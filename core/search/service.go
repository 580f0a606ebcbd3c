package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goto/salt/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100

	defaultSourceTimeout = 3 * time.Second
)

type Service struct {
	sources  []Source
	builders map[Kind]SummaryBuilder
	timeout  time.Duration
	logger   log.Logger

	searchCounter metric.Int64Counter
}

type ServiceDeps struct {
	Sources []Source
	// Builders defaults to DefaultBuilders() when empty.
	Builders []SummaryBuilder
	// SourceTimeout bounds each sub-query independently; a timed-out source
	// is excluded from the merge instead of failing the request.
	SourceTimeout time.Duration
	Logger        log.Logger
}

func NewService(deps ServiceDeps) *Service {
	builders := deps.Builders
	if len(builders) == 0 {
		builders = DefaultBuilders()
	}
	byKind := make(map[Kind]SummaryBuilder, len(builders))
	for _, b := range builders {
		byKind[b.Kind()] = b
	}

	timeout := deps.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	searchCounter, err := otel.Meter("github.com/spotlight-project/spotlight/core/search").
		Int64Counter("spotlight.search.operation")
	if err != nil {
		otel.Handle(err)
	}

	return &Service{
		sources:  deps.Sources,
		builders: byKind,
		timeout:  timeout,
		logger:   deps.Logger,

		searchCounter: searchCounter,
	}
}

// Search fans the term out to every source in parallel, merges the scored
// matches into one deduplicated candidate set and returns the requested page
// of it. Ordering is (normalized score desc, id asc) so repeated calls over
// unchanged data paginate identically regardless of source completion order.
func (s *Service) Search(ctx context.Context, req Request) (pg Page, err error) {
	defer func() {
		s.instrumentSearch(ctx, err)
	}()

	if strings.TrimSpace(req.Term) == "" {
		return Page{}, ErrEmptyTerm
	}
	for field := range req.Filters {
		if strings.TrimSpace(field) == "" {
			return Page{}, InvalidFilterError{Field: field}
		}
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	perSource, failed := s.fanout(ctx, req.Term, req.Filters)
	if len(failed) == len(s.sources) && len(s.sources) > 0 {
		return Page{}, UnavailableError{Sources: failed}
	}

	merged := mergeMatches(perSource)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ID < merged[j].ID
	})

	results := s.synthesize(paginate(merged, page, perPage))
	return Page{
		Results: results,
		Total:   len(merged),
		Page:    page,
		PerPage: perPage,
	}, nil
}

// fanout runs one sub-query per source concurrently. Each sub-query gets its
// own timeout; failures and timeouts are logged and reported back as failed
// source names so the caller can distinguish partial from total unavailability.
func (s *Service) fanout(ctx context.Context, term string, filters Filter) ([][]Match, []string) {
	perSource := make([][]Match, len(s.sources))
	errs := make([]error, len(s.sources))

	var eg errgroup.Group
	for i, src := range s.sources {
		i, src := i, src
		eg.Go(func() error {
			subCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			matches, err := src.Search(subCtx, term, filters)
			if err != nil {
				errs[i] = err
				return nil
			}
			perSource[i] = matches
			return nil
		})
	}
	_ = eg.Wait()

	var failed []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed = append(failed, s.sources[i].Name())
		s.logger.Warn("search source failed, excluding from results",
			"source", s.sources[i].Name(),
			"err", err,
		)
	}
	return perSource, failed
}

// mergeMatches normalizes each source's scores to [0, 1] before combining so
// no index technology dominates by virtue of its scoring formula, then
// deduplicates by entity ID keeping the best-scoring occurrence.
func mergeMatches(perSource [][]Match) []Match {
	byID := make(map[string]Match)
	for _, matches := range perSource {
		for _, m := range normalizeScores(matches) {
			existing, ok := byID[m.ID]
			if !ok || m.Score > existing.Score {
				byID[m.ID] = m
			}
		}
	}

	merged := make([]Match, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	return merged
}

func normalizeScores(matches []Match) []Match {
	if len(matches) == 0 {
		return matches
	}

	min, max := matches[0].Score, matches[0].Score
	for _, m := range matches[1:] {
		if m.Score < min {
			min = m.Score
		}
		if m.Score > max {
			max = m.Score
		}
	}

	out := make([]Match, len(matches))
	for i, m := range matches {
		if max == min {
			m.Score = 1.0
		} else {
			m.Score = (m.Score - min) / (max - min)
		}
		out[i] = m
	}
	return out
}

func paginate(matches []Match, page, perPage int) []Match {
	start := (page - 1) * perPage
	if start >= len(matches) {
		return nil
	}
	end := start + perPage
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end]
}

func (s *Service) synthesize(matches []Match) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		b, ok := s.builders[m.Kind]
		if !ok {
			s.logger.Debug("no summary builder for kind, dropping match", "kind", string(m.Kind), "id", m.ID)
			continue
		}
		results = append(results, b.Build(m))
	}
	return results
}

func (s *Service) instrumentSearch(ctx context.Context, err error) {
	s.searchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("operation.success", err == nil),
	))
}
