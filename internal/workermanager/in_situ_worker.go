package workermanager

import (
	"context"
	"fmt"

	"github.com/goto/salt/log"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/internal/store/postgres"
)

// InSituWorker does the index maintenance inline instead of enqueueing it.
// Used when the async worker is disabled; writes then pay the refresh cost.
type InSituWorker struct {
	manager *Manager
	logger  log.Logger
}

func NewInSituWorker(deps Deps) *InSituWorker {
	return &InSituWorker{
		manager: NewWithWorker(nil, deps),
		logger:  deps.Logger,
	}
}

func (w *InSituWorker) EnqueueIndexOfficerJob(ctx context.Context, o officer.Officer) error {
	if err := w.manager.IndexOfficer(ctx, o); err != nil {
		return fmt.Errorf("index officer: %w: id '%s'", err, o.ID)
	}
	return w.refresh(ctx, postgres.ViewOfficers)
}

func (w *InSituWorker) EnqueueDeleteOfficerJob(ctx context.Context, id string) error {
	if err := w.manager.indexRepo.DeleteOfficer(ctx, id); err != nil {
		return fmt.Errorf("delete officer document: %w: id '%s'", err, id)
	}
	return w.refresh(ctx, postgres.ViewOfficers)
}

func (w *InSituWorker) EnqueueEmploymentChangedJob(ctx context.Context, officerID string) error {
	if err := w.manager.ReindexOfficer(ctx, officerID); err != nil {
		return fmt.Errorf("reindex officer: %w: id '%s'", err, officerID)
	}
	return w.refresh(ctx, postgres.ViewOfficers)
}

func (w *InSituWorker) EnqueueIndexAgencyJob(ctx context.Context, a agency.Agency) error {
	if err := w.manager.IndexAgency(ctx, a); err != nil {
		return fmt.Errorf("index agency: %w: id '%s'", err, a.ID)
	}
	return w.refresh(ctx, postgres.ViewAgencies, postgres.ViewOfficers, postgres.ViewUnits)
}

func (w *InSituWorker) EnqueueDeleteAgencyJob(ctx context.Context, id string) error {
	if err := w.manager.indexRepo.DeleteAgency(ctx, id); err != nil {
		return fmt.Errorf("delete agency document: %w: id '%s'", err, id)
	}
	return w.refresh(ctx, postgres.ViewAgencies, postgres.ViewOfficers, postgres.ViewUnits)
}

func (w *InSituWorker) EnqueueIndexUnitJob(ctx context.Context, u agency.Unit) error {
	if err := w.manager.IndexUnit(ctx, u); err != nil {
		return fmt.Errorf("index unit: %w: id '%s'", err, u.ID)
	}
	return w.refresh(ctx, postgres.ViewUnits, postgres.ViewOfficers)
}

func (w *InSituWorker) EnqueueDeleteUnitJob(ctx context.Context, id string) error {
	if err := w.manager.indexRepo.DeleteUnit(ctx, id); err != nil {
		return fmt.Errorf("delete unit document: %w: id '%s'", err, id)
	}
	return w.refresh(ctx, postgres.ViewUnits, postgres.ViewOfficers)
}

func (w *InSituWorker) refresh(ctx context.Context, views ...string) error {
	for _, view := range views {
		if err := w.manager.refresher.RefreshView(ctx, view); err != nil {
			return fmt.Errorf("refresh view '%s': %w", view, err)
		}
	}
	return nil
}

func (*InSituWorker) Close() error { return nil }
