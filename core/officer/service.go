package officer

import (
	"context"
	"fmt"

	"github.com/goto/salt/log"
)

// Worker pushes derived-index maintenance off the write path. Implementations
// must never fail the canonical write because index maintenance failed.
type Worker interface {
	EnqueueIndexOfficerJob(ctx context.Context, o Officer) error
	EnqueueDeleteOfficerJob(ctx context.Context, id string) error
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

func (s *Service) GetAllOfficers(ctx context.Context, flt Filter) ([]Officer, error) {
	if err := flt.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx, flt)
}

func (s *Service) GetOfficerByID(ctx context.Context, id string) (Officer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpsertOfficer(ctx context.Context, o *Officer) (string, error) {
	if o == nil {
		return "", ErrNilOfficer
	}

	id, err := s.repo.Upsert(ctx, o)
	if err != nil {
		return "", fmt.Errorf("upsert officer: %w", err)
	}

	o.ID = id
	if err := s.worker.EnqueueIndexOfficerJob(ctx, *o); err != nil {
		s.logger.Error("enqueue index officer job", "officer_id", id, "err", err)
	}

	return id, nil
}

func (s *Service) DeleteOfficer(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if err := s.worker.EnqueueDeleteOfficerJob(ctx, id); err != nil {
		s.logger.Error("enqueue delete officer job", "officer_id", id, "err", err)
	}
	return nil
}
