package workermanager

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goto/salt/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/internal/store/bleve"
	"github.com/spotlight-project/spotlight/pkg/worker"
	"github.com/spotlight-project/spotlight/pkg/worker/inmem"
)

// Manager owns the async index-maintenance pipeline: it registers the job
// handlers, runs the worker threads and is the enqueue facade the core
// services write through. Identical triggers coalesce in the processor, so
// write bursts cost one refresh.
type Manager struct {
	processor *inmem.Processor
	initDone  atomic.Bool
	worker    Worker
	logger    log.Logger

	indexRepo      IndexRepository
	refresher      ViewRefresher
	officerRepo    officer.Repository
	employmentRepo employment.Repository
	agencyRepo     agency.Repository
	unitRepo       agency.UnitRepository
}

type Worker interface {
	Register(typ string, h worker.JobHandler) error
	Run(ctx context.Context) error
	Enqueue(ctx context.Context, jobs ...worker.JobSpec) error
}

// IndexRepository maintains the per-kind full-text indexes.
type IndexRepository interface {
	IndexOfficer(ctx context.Context, doc bleve.OfficerDocument) error
	DeleteOfficer(ctx context.Context, id string) error
	IndexAgency(ctx context.Context, doc bleve.AgencyDocument) error
	DeleteAgency(ctx context.Context, id string) error
	IndexUnit(ctx context.Context, doc bleve.UnitDocument) error
	DeleteUnit(ctx context.Context, id string) error
}

// ViewRefresher rebuilds one relational search view by name.
type ViewRefresher interface {
	RefreshView(ctx context.Context, name string) error
}

type Config struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	WorkerCount  int           `yaml:"worker_count" mapstructure:"worker_count" default:"3"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" default:"500ms"`
}

type Deps struct {
	Config         Config
	IndexRepo      IndexRepository
	Refresher      ViewRefresher
	OfficerRepo    officer.Repository
	EmploymentRepo employment.Repository
	AgencyRepo     agency.Repository
	UnitRepo       agency.UnitRepository
	Logger         log.Logger
}

func New(deps Deps) (*Manager, error) {
	cfg := deps.Config
	processor := inmem.NewProcessor()

	w, err := worker.New(
		processor,
		worker.WithRunConfig(cfg.WorkerCount, cfg.PollInterval),
		worker.WithLogger(deps.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("new worker manager: %w", err)
	}

	return &Manager{
		processor:      processor,
		worker:         w,
		logger:         deps.Logger,
		indexRepo:      deps.IndexRepo,
		refresher:      deps.Refresher,
		officerRepo:    deps.OfficerRepo,
		employmentRepo: deps.EmploymentRepo,
		agencyRepo:     deps.AgencyRepo,
		unitRepo:       deps.UnitRepo,
	}, nil
}

func NewWithWorker(w Worker, deps Deps) *Manager {
	return &Manager{
		worker:         w,
		logger:         deps.Logger,
		indexRepo:      deps.IndexRepo,
		refresher:      deps.Refresher,
		officerRepo:    deps.OfficerRepo,
		employmentRepo: deps.EmploymentRepo,
		agencyRepo:     deps.AgencyRepo,
		unitRepo:       deps.UnitRepo,
	}
}

func (m *Manager) Run(ctx context.Context) error {
	if err := m.init(); err != nil {
		return fmt.Errorf("run async worker: init: %w", err)
	}
	return m.worker.Run(ctx)
}

func (m *Manager) init() error {
	if m.initDone.Load() {
		return nil
	}
	m.initDone.Store(true)

	jobHandlers := map[string]worker.JobHandler{
		jobIndexOfficer:   m.indexOfficerHandler(),
		jobDeleteOfficer:  m.deleteOfficerHandler(),
		jobReindexOfficer: m.reindexOfficerHandler(),
		jobIndexAgency:    m.indexAgencyHandler(),
		jobDeleteAgency:   m.deleteAgencyHandler(),
		jobIndexUnit:      m.indexUnitHandler(),
		jobDeleteUnit:     m.deleteUnitHandler(),
		jobRefreshView:    m.refreshViewHandler(),
	}
	for typ, h := range jobHandlers {
		if err := m.worker.Register(typ, h); err != nil {
			return err
		}
	}

	return m.registerStatsCallback(keys(jobHandlers))
}

func (*Manager) Close() error { return nil }

func (m *Manager) registerStatsCallback(jobTypes []string) error {
	if m.processor == nil {
		return nil
	}

	const attrJobType = attribute.Key("job.type")

	meter := otel.Meter("github.com/spotlight-project/spotlight/internal/workermanager")
	pendingJobs, err := meter.Int64ObservableGauge("spotlight.worker.pending_jobs")
	handleOtelErr(err)

	deadJobs, err := meter.Int64ObservableGauge("spotlight.worker.dead_jobs")
	handleOtelErr(err)

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			stats := m.processor.Stats()
			for _, typ := range jobTypes {
				st := stats[typ]
				attr := metric.WithAttributes(attrJobType.String(typ))
				o.ObserveInt64(pendingJobs, int64(st.Pending), attr)
				o.ObserveInt64(deadJobs, int64(st.Dead), attr)
			}
			return nil
		},
		pendingJobs,
		deadJobs,
	)

	return err
}

func keys(handlers map[string]worker.JobHandler) []string {
	types := make([]string, 0, len(handlers))
	for typ := range handlers {
		types = append(types, typ)
	}
	return types
}

func handleOtelErr(err error) {
	if err != nil {
		otel.Handle(err)
	}
}
