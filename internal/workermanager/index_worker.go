package workermanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/internal/store/bleve"
	"github.com/spotlight-project/spotlight/internal/store/postgres"
	"github.com/spotlight-project/spotlight/pkg/worker"
)

const (
	jobIndexOfficer   = "index-officer"
	jobDeleteOfficer  = "delete-officer"
	jobReindexOfficer = "reindex-officer"
	jobIndexAgency    = "index-agency"
	jobDeleteAgency   = "delete-agency"
	jobIndexUnit      = "index-unit"
	jobDeleteUnit     = "delete-unit"
	jobRefreshView    = "refresh-view"
)

// refreshSpec builds the view-refresh trigger for one view. The payload is
// the bare view name so that every trigger for the same view coalesces into
// one pending job.
func refreshSpec(view string) worker.JobSpec {
	return worker.JobSpec{Type: jobRefreshView, Payload: []byte(view)}
}

func (m *Manager) EnqueueIndexOfficerJob(ctx context.Context, o officer.Officer) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("enqueue index officer job: marshal payload: %w", err)
	}

	err = m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobIndexOfficer, Payload: payload},
		refreshSpec(postgres.ViewOfficers),
	)
	if err != nil {
		return fmt.Errorf("enqueue index officer job: %w", err)
	}
	return nil
}

func (m *Manager) EnqueueDeleteOfficerJob(ctx context.Context, id string) error {
	err := m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobDeleteOfficer, Payload: []byte(id)},
		refreshSpec(postgres.ViewOfficers),
	)
	if err != nil {
		return fmt.Errorf("enqueue delete officer job: %w", err)
	}
	return nil
}

// EnqueueEmploymentChangedJob re-derives everything downstream of an
// officer's employment: the officer's full-text document and the officer
// view.
func (m *Manager) EnqueueEmploymentChangedJob(ctx context.Context, officerID string) error {
	err := m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobReindexOfficer, Payload: []byte(officerID)},
		refreshSpec(postgres.ViewOfficers),
	)
	if err != nil {
		return fmt.Errorf("enqueue employment changed job: %w", err)
	}
	return nil
}

// Agency names are denormalized into the officer and unit views, so agency
// writes invalidate all three.
func (m *Manager) EnqueueIndexAgencyJob(ctx context.Context, a agency.Agency) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("enqueue index agency job: marshal payload: %w", err)
	}

	err = m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobIndexAgency, Payload: payload},
		refreshSpec(postgres.ViewAgencies),
		refreshSpec(postgres.ViewOfficers),
		refreshSpec(postgres.ViewUnits),
	)
	if err != nil {
		return fmt.Errorf("enqueue index agency job: %w", err)
	}
	return nil
}

func (m *Manager) EnqueueDeleteAgencyJob(ctx context.Context, id string) error {
	err := m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobDeleteAgency, Payload: []byte(id)},
		refreshSpec(postgres.ViewAgencies),
		refreshSpec(postgres.ViewOfficers),
		refreshSpec(postgres.ViewUnits),
	)
	if err != nil {
		return fmt.Errorf("enqueue delete agency job: %w", err)
	}
	return nil
}

func (m *Manager) EnqueueIndexUnitJob(ctx context.Context, u agency.Unit) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("enqueue index unit job: marshal payload: %w", err)
	}

	err = m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobIndexUnit, Payload: payload},
		refreshSpec(postgres.ViewUnits),
		refreshSpec(postgres.ViewOfficers),
	)
	if err != nil {
		return fmt.Errorf("enqueue index unit job: %w", err)
	}
	return nil
}

func (m *Manager) EnqueueDeleteUnitJob(ctx context.Context, id string) error {
	err := m.worker.Enqueue(ctx,
		worker.JobSpec{Type: jobDeleteUnit, Payload: []byte(id)},
		refreshSpec(postgres.ViewUnits),
		refreshSpec(postgres.ViewOfficers),
	)
	if err != nil {
		return fmt.Errorf("enqueue delete unit job: %w", err)
	}
	return nil
}

func (m *Manager) indexOfficerHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			var o officer.Officer
			if err := json.Unmarshal(job.Payload, &o); err != nil {
				return fmt.Errorf("index officer: unmarshal payload: %w", err)
			}
			return m.IndexOfficer(ctx, o)
		},
	}
}

func (m *Manager) deleteOfficerHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			if err := m.indexRepo.DeleteOfficer(ctx, string(job.Payload)); err != nil {
				return &worker.RetryableError{Cause: fmt.Errorf("delete officer document: %w", err)}
			}
			return nil
		},
	}
}

func (m *Manager) reindexOfficerHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			return m.ReindexOfficer(ctx, string(job.Payload))
		},
	}
}

func (m *Manager) indexAgencyHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			var a agency.Agency
			if err := json.Unmarshal(job.Payload, &a); err != nil {
				return fmt.Errorf("index agency: unmarshal payload: %w", err)
			}
			return m.IndexAgency(ctx, a)
		},
	}
}

func (m *Manager) deleteAgencyHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			if err := m.indexRepo.DeleteAgency(ctx, string(job.Payload)); err != nil {
				return &worker.RetryableError{Cause: fmt.Errorf("delete agency document: %w", err)}
			}
			return nil
		},
	}
}

func (m *Manager) indexUnitHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			var u agency.Unit
			if err := json.Unmarshal(job.Payload, &u); err != nil {
				return fmt.Errorf("index unit: unmarshal payload: %w", err)
			}
			return m.IndexUnit(ctx, u)
		},
	}
}

func (m *Manager) deleteUnitHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			if err := m.indexRepo.DeleteUnit(ctx, string(job.Payload)); err != nil {
				return &worker.RetryableError{Cause: fmt.Errorf("delete unit document: %w", err)}
			}
			return nil
		},
	}
}

func (m *Manager) refreshViewHandler() worker.JobHandler {
	return worker.JobHandler{
		Handle: func(ctx context.Context, job worker.JobSpec) error {
			return m.RefreshView(ctx, string(job.Payload))
		},
		JobOpts: worker.JobOptions{
			MaxAttempts: 5,
			Timeout:     time.Minute,
		},
	}
}

// IndexOfficer writes the officer's document into the full-text index,
// enriched with the officer's primary canonical employment.
func (m *Manager) IndexOfficer(ctx context.Context, o officer.Officer) error {
	doc, err := m.buildOfficerDocument(ctx, o)
	if err != nil {
		return &worker.RetryableError{Cause: fmt.Errorf("index officer: %w", err)}
	}
	if err := m.indexRepo.IndexOfficer(ctx, doc); err != nil {
		return &worker.RetryableError{Cause: fmt.Errorf("index officer document: %w", err)}
	}
	return nil
}

// ReindexOfficer refreshes the officer document from the system of record.
// An officer deleted since the trigger fired gets their document removed
// instead.
func (m *Manager) ReindexOfficer(ctx context.Context, officerID string) error {
	o, err := m.officerRepo.GetByID(ctx, officerID)
	if err != nil {
		var nfe officer.NotFoundError
		if errors.As(err, &nfe) {
			if delErr := m.indexRepo.DeleteOfficer(ctx, officerID); delErr != nil {
				return &worker.RetryableError{Cause: fmt.Errorf("reindex officer: delete document: %w", delErr)}
			}
			return nil
		}
		return &worker.RetryableError{Cause: fmt.Errorf("reindex officer: %w", err)}
	}
	return m.IndexOfficer(ctx, o)
}

func (m *Manager) IndexAgency(ctx context.Context, a agency.Agency) error {
	doc := bleve.AgencyDocument{
		ID:        a.ID,
		Name:      a.Name,
		City:      a.City,
		State:     a.State,
		UpdatedAt: a.UpdatedAt,
	}
	if err := m.indexRepo.IndexAgency(ctx, doc); err != nil {
		return &worker.RetryableError{Cause: fmt.Errorf("index agency document: %w", err)}
	}
	return nil
}

func (m *Manager) IndexUnit(ctx context.Context, u agency.Unit) error {
	doc := bleve.UnitDocument{
		ID:          u.ID,
		Name:        u.Name,
		Description: u.Description,
		AgencyID:    u.AgencyID,
		UpdatedAt:   u.UpdatedAt,
	}
	if a, err := m.agencyRepo.GetByID(ctx, u.AgencyID); err == nil {
		doc.AgencyName = a.Name
	} else if !isNotFound(err) {
		return &worker.RetryableError{Cause: fmt.Errorf("index unit: resolve agency: %w", err)}
	}

	if err := m.indexRepo.IndexUnit(ctx, doc); err != nil {
		return &worker.RetryableError{Cause: fmt.Errorf("index unit document: %w", err)}
	}
	return nil
}

// RefreshView rebuilds one relational view. Failures are always retried;
// the pending trigger must not be lost or the view goes stale until the
// next write.
func (m *Manager) RefreshView(ctx context.Context, view string) error {
	if err := m.refresher.RefreshView(ctx, view); err != nil {
		return &worker.RetryableError{Cause: err}
	}
	return nil
}

func (m *Manager) buildOfficerDocument(ctx context.Context, o officer.Officer) (bleve.OfficerDocument, error) {
	doc := bleve.OfficerDocument{
		ID:          o.ID,
		FullName:    o.FullName(),
		BadgeNumber: o.BadgeNumber,
		UpdatedAt:   o.UpdatedAt,
	}

	canon, err := m.employmentRepo.GetCanonicalByOfficer(ctx, o.ID)
	if err != nil {
		return doc, fmt.Errorf("get canonical employment: %w", err)
	}
	if len(canon) == 0 {
		return doc, nil
	}

	primary := canon[0]
	if primary.BadgeNumber != "" {
		doc.BadgeNumber = primary.BadgeNumber
	}
	if primary.HighestRank != nil {
		doc.Rank = primary.HighestRank.String()
	}
	doc.AgencyID = primary.AgencyID

	if a, err := m.agencyRepo.GetByID(ctx, primary.AgencyID); err == nil {
		doc.AgencyName = a.Name
	} else if !isNotFound(err) {
		return doc, fmt.Errorf("resolve agency: %w", err)
	}

	unitName, err := m.latestUnitName(ctx, o.ID, primary.AgencyID)
	if err != nil {
		return doc, err
	}
	doc.UnitName = unitName

	return doc, nil
}

// latestUnitName resolves the unit from the most recently ingested raw
// record carrying one. Raw records come back newest first.
func (m *Manager) latestUnitName(ctx context.Context, officerID, agencyID string) (string, error) {
	records, err := m.employmentRepo.GetByOfficerAgency(ctx, officerID, agencyID)
	if err != nil {
		return "", fmt.Errorf("get employment records: %w", err)
	}
	for _, rec := range records {
		if rec.UnitID == "" {
			continue
		}
		u, err := m.unitRepo.GetByID(ctx, rec.UnitID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", fmt.Errorf("resolve unit: %w", err)
		}
		return u.Name, nil
	}
	return "", nil
}

func isNotFound(err error) bool {
	var officerNFE officer.NotFoundError
	var agencyNFE agency.NotFoundError
	var employmentNFE employment.NotFoundError
	return errors.As(err, &officerNFE) || errors.As(err, &agencyNFE) || errors.As(err, &employmentNFE)
}
