package agency

import (
	"context"
	"fmt"

	"github.com/goto/salt/log"
)

type Worker interface {
	EnqueueIndexAgencyJob(ctx context.Context, a Agency) error
	EnqueueDeleteAgencyJob(ctx context.Context, id string) error
	EnqueueIndexUnitJob(ctx context.Context, u Unit) error
	EnqueueDeleteUnitJob(ctx context.Context, id string) error
	Close() error
}

type Service struct {
	repo     Repository
	unitRepo UnitRepository
	worker   Worker
	logger   log.Logger
}

type ServiceDeps struct {
	Repo     Repository
	UnitRepo UnitRepository
	Worker   Worker
	Logger   log.Logger
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		repo:     deps.Repo,
		unitRepo: deps.UnitRepo,
		worker:   deps.Worker,
		logger:   deps.Logger,
	}
}

func (s *Service) GetAllAgencies(ctx context.Context, flt Filter) ([]Agency, error) {
	if err := flt.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx, flt)
}

func (s *Service) GetAgencyByID(ctx context.Context, id string) (Agency, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpsertAgency(ctx context.Context, a *Agency) (string, error) {
	if a == nil {
		return "", ErrNilAgency
	}
	if a.Name == "" {
		return "", ErrEmptyName
	}

	id, err := s.repo.Upsert(ctx, a)
	if err != nil {
		return "", fmt.Errorf("upsert agency: %w", err)
	}

	a.ID = id
	if err := s.worker.EnqueueIndexAgencyJob(ctx, *a); err != nil {
		s.logger.Error("enqueue index agency job", "agency_id", id, "err", err)
	}
	return id, nil
}

func (s *Service) DeleteAgency(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.worker.EnqueueDeleteAgencyJob(ctx, id); err != nil {
		s.logger.Error("enqueue delete agency job", "agency_id", id, "err", err)
	}
	return nil
}

func (s *Service) GetUnitsByAgency(ctx context.Context, agencyID string) ([]Unit, error) {
	return s.unitRepo.GetByAgency(ctx, agencyID)
}

func (s *Service) UpsertUnit(ctx context.Context, u *Unit) (string, error) {
	if u == nil {
		return "", ErrNilUnit
	}

	id, err := s.unitRepo.Upsert(ctx, u)
	if err != nil {
		return "", fmt.Errorf("upsert unit: %w", err)
	}

	u.ID = id
	if err := s.worker.EnqueueIndexUnitJob(ctx, *u); err != nil {
		s.logger.Error("enqueue index unit job", "unit_id", id, "err", err)
	}
	return id, nil
}

func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	if err := s.unitRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.worker.EnqueueDeleteUnitJob(ctx, id); err != nil {
		s.logger.Error("enqueue delete unit job", "unit_id", id, "err", err)
	}
	return nil
}
