package bleve_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotlight-project/spotlight/core/search"
	"github.com/spotlight-project/spotlight/internal/store/bleve"
)

func newRepository(t *testing.T) *bleve.Repository {
	t.Helper()
	repo, err := bleve.NewRepository(bleve.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sourceFor(t *testing.T, repo *bleve.Repository, kind search.Kind) *bleve.Source {
	t.Helper()
	for _, src := range bleve.Sources(repo) {
		if src.Name() == "bleve/"+string(kind) {
			return src
		}
	}
	t.Fatalf("no source for kind %s", kind)
	return nil
}

func TestRepositoryIndexAndSearchOfficer(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	updated := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{
		ID:          "off-1",
		FullName:    "John Doe",
		BadgeNumber: "1234",
		Rank:        "SERGEANT",
		UnitName:    "Homicide",
		AgencyID:    "ag-1",
		AgencyName:  "Springfield PD",
		UpdatedAt:   updated,
	}))
	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{
		ID:       "off-2",
		FullName: "Jane Smith",
	}))

	src := sourceFor(t, repo, search.KindOfficer)
	matches, err := src.Search(ctx, "john", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "off-1", m.ID)
	assert.Equal(t, search.KindOfficer, m.Kind)
	assert.Equal(t, "John Doe", m.Name)
	assert.Equal(t, "bleve/Officer", m.Source)
	assert.Positive(t, m.Score)
	assert.Equal(t, "SERGEANT", m.Fields["rank"])
	assert.Equal(t, "Homicide", m.Fields["unit_name"])
	assert.Equal(t, "Springfield PD", m.Fields["agency_name"])
	assert.Equal(t, updated, m.UpdatedAt.UTC())
}

func TestRepositoryUpsertReplacesDocument(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{ID: "off-1", FullName: "John Doe"}))
	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{ID: "off-1", FullName: "Jonathan Doe"}))

	src := sourceFor(t, repo, search.KindOfficer)
	matches, err := src.Search(ctx, "doe", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Jonathan Doe", matches[0].Name)
}

func TestRepositoryDeleteOfficer(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{ID: "off-1", FullName: "John Doe"}))
	require.NoError(t, repo.DeleteOfficer(ctx, "off-1"))

	src := sourceFor(t, repo, search.KindOfficer)
	matches, err := src.Search(ctx, "john", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRepositoryEmptyID(t *testing.T) {
	repo := newRepository(t)
	assert.Error(t, repo.IndexOfficer(context.Background(), bleve.OfficerDocument{FullName: "Nobody"}))
}

func TestSourceFilterPushdown(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{
		ID: "off-1", FullName: "John Doe", AgencyID: "ag-1", Rank: "SERGEANT",
	}))
	require.NoError(t, repo.IndexOfficer(ctx, bleve.OfficerDocument{
		ID: "off-2", FullName: "John Roe", AgencyID: "ag-2", Rank: "OFFICER",
	}))

	src := sourceFor(t, repo, search.KindOfficer)

	t.Run("SingleValue", func(t *testing.T) {
		matches, err := src.Search(ctx, "john", search.Filter{"agency_id": {"ag-1"}})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "off-1", matches[0].ID)
	})

	t.Run("MultipleValuesUnion", func(t *testing.T) {
		matches, err := src.Search(ctx, "john", search.Filter{"agency_id": {"ag-1", "ag-2"}})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("UnknownFieldMatchesNothing", func(t *testing.T) {
		matches, err := src.Search(ctx, "john", search.Filter{"shoe_size": {"44"}})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestAgencyAndUnitSources(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(t, repo.IndexAgency(ctx, bleve.AgencyDocument{
		ID: "ag-1", Name: "Springfield Police Department", City: "Springfield", State: "IL",
	}))
	require.NoError(t, repo.IndexUnit(ctx, bleve.UnitDocument{
		ID: "un-1", Name: "Homicide", AgencyID: "ag-1", AgencyName: "Springfield Police Department",
	}))

	agencySrc := sourceFor(t, repo, search.KindAgency)
	matches, err := agencySrc.Search(ctx, "springfield", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ag-1", matches[0].ID)
	assert.Equal(t, "IL", matches[0].Fields["state"])

	unitSrc := sourceFor(t, repo, search.KindUnit)
	matches, err = unitSrc.Search(ctx, "homicide", search.Filter{"agency_id": {"ag-1"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Homicide", matches[0].Name)
}
