package employment

import (
	"context"
	"fmt"

	"github.com/goto/salt/log"
)

type Worker interface {
	EnqueueEmploymentChangedJob(ctx context.Context, officerID string) error
	Close() error
}

type Service struct {
	repo   Repository
	worker Worker
	logger log.Logger
}

type ServiceDeps struct {
	Repo   Repository
	Worker Worker
	Logger log.Logger
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		repo:   deps.Repo,
		worker: deps.Worker,
		logger: deps.Logger,
	}
}

// AddRecord stores a raw employment record, regenerates the canonical record
// for the pair and schedules a search-index refresh. The canonical cache row
// is replaced in the same call so it can never outlive a raw-record change.
func (s *Service) AddRecord(ctx context.Context, rec *Record, overrideCurrentlyEmployed *bool) (CanonicalRecord, error) {
	if rec == nil {
		return CanonicalRecord{}, ErrNilRecord
	}

	id, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return CanonicalRecord{}, fmt.Errorf("upsert employment record: %w", err)
	}
	rec.ID = id

	canonical, err := s.regenerate(ctx, rec.OfficerID, rec.AgencyID, overrideCurrentlyEmployed)
	if err != nil {
		return CanonicalRecord{}, err
	}

	if err := s.worker.EnqueueEmploymentChangedJob(ctx, rec.OfficerID); err != nil {
		s.logger.Error("enqueue employment changed job", "officer_id", rec.OfficerID, "err", err)
	}

	return canonical, nil
}

// GetRecords returns the raw records for a pair, most recently ingested
// first.
func (s *Service) GetRecords(ctx context.Context, officerID, agencyID string) ([]Record, error) {
	return s.repo.GetByOfficerAgency(ctx, officerID, agencyID)
}

// GetCanonical returns the cached canonical record, falling back to a fresh
// reconciliation when no cache row exists.
func (s *Service) GetCanonical(ctx context.Context, officerID, agencyID string) (CanonicalRecord, error) {
	canonical, err := s.repo.GetCanonical(ctx, officerID, agencyID)
	if err == nil {
		return canonical, nil
	}

	records, err := s.repo.GetByOfficerAgency(ctx, officerID, agencyID)
	if err != nil {
		return CanonicalRecord{}, fmt.Errorf("get employment records: %w", err)
	}
	if len(records) == 0 {
		return CanonicalRecord{}, NotFoundError{OfficerID: officerID, AgencyID: agencyID}
	}

	return Reconcile(records, nil)
}

func (s *Service) regenerate(ctx context.Context, officerID, agencyID string, override *bool) (CanonicalRecord, error) {
	records, err := s.repo.GetByOfficerAgency(ctx, officerID, agencyID)
	if err != nil {
		return CanonicalRecord{}, fmt.Errorf("get employment records: %w", err)
	}

	canonical, err := Reconcile(records, override)
	if err != nil {
		return CanonicalRecord{}, fmt.Errorf("reconcile employment records: %w", err)
	}

	if err := s.repo.DeleteCanonical(ctx, officerID, agencyID); err != nil {
		return CanonicalRecord{}, fmt.Errorf("invalidate canonical employment: %w", err)
	}
	if err := s.repo.UpsertCanonical(ctx, canonical); err != nil {
		return CanonicalRecord{}, fmt.Errorf("store canonical employment: %w", err)
	}

	return canonical, nil
}
