package workermanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/internal/workermanager"
)

func TestInSituWorkerIndexesAndRefreshesInline(t *testing.T) {
	deps, indexRepo, refresher := newTestDeps()
	wrkr := workermanager.NewInSituWorker(deps)

	require.NoError(t, wrkr.EnqueueIndexOfficerJob(ctx, officer.Officer{
		ID: "off-1", FirstName: "John", LastName: "Doe",
	}))

	assert.Contains(t, indexRepo.officers, "off-1")
	assert.Equal(t, []string{"search_officers"}, refresher.refreshed)
}

func TestInSituWorkerDeleteOfficer(t *testing.T) {
	deps, indexRepo, refresher := newTestDeps()
	wrkr := workermanager.NewInSituWorker(deps)

	require.NoError(t, wrkr.EnqueueIndexOfficerJob(ctx, officer.Officer{ID: "off-1", LastName: "Doe"}))
	require.NoError(t, wrkr.EnqueueDeleteOfficerJob(ctx, "off-1"))

	assert.NotContains(t, indexRepo.officers, "off-1")
	assert.Equal(t, []string{"search_officers", "search_officers"}, refresher.refreshed)
}

func TestInSituWorkerAgencyRefreshesAllViews(t *testing.T) {
	deps, _, refresher := newTestDeps()
	wrkr := workermanager.NewInSituWorker(deps)

	require.NoError(t, wrkr.EnqueueDeleteAgencyJob(ctx, "ag-1"))
	assert.Equal(t, []string{"search_agencies", "search_officers", "search_units"}, refresher.refreshed)
}
