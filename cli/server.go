package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/core/search"
	"github.com/spotlight-project/spotlight/internal/server"
	"github.com/spotlight-project/spotlight/internal/store/bleve"
	"github.com/spotlight-project/spotlight/internal/store/postgres"
	"github.com/spotlight-project/spotlight/internal/workermanager"
)

// indexWorker is the write-side facade every core service enqueues index
// maintenance through.
type indexWorker interface {
	officer.Worker
	agency.Worker
	employment.Worker
}

func serverCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "server <command>",
		Aliases: []string{"s"},
		Short:   "Run spotlight server",
		Long:    "Server management commands.",
		Example: heredoc.Doc(`
			$ spotlight server start
			$ spotlight server start -c ./config.yaml
			$ spotlight server migrate
			$ spotlight server migrate -c ./config.yaml
		`),
	}

	cmd.AddCommand(
		serverStartCommand(cfg),
		serverMigrateCommand(cfg),
	)

	return cmd
}

func serverStartCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Short:   "Start server on default port 8080",
		Example: "spotlight server start",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := overrideConfigFromFlag(cmd, cfg); err != nil {
				return err
			}
			if err := runServer(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		},
	}
}

func serverMigrateCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run storage migration",
		Example: heredoc.Doc(`
			$ spotlight server migrate
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := overrideConfigFromFlag(cmd, cfg); err != nil {
				return err
			}
			return runMigrations(cfg)
		},
	}
}

func overrideConfigFromFlag(cmd *cobra.Command, cfg *Config) error {
	cfgFile, err := cmd.Flags().GetString(configFlag)
	if err != nil || cfgFile == "" {
		return nil
	}
	return LoadConfigFromFlag(cfgFile, cfg)
}

func runServer(ctx context.Context, cfg *Config) error {
	logger := initLogger(cfg.LogLevel)
	logger.Info("spotlight starting", "version", Version)

	pgClient, err := initPostgres(logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pgClient.Close(); err != nil {
			logger.Error("close postgres client", "err", err)
		}
	}()

	indexRepo, err := bleve.NewRepository(cfg.Index)
	if err != nil {
		return fmt.Errorf("create full-text index repository: %w", err)
	}
	defer func() {
		if err := indexRepo.Close(); err != nil {
			logger.Error("close full-text indexes", "err", err)
		}
	}()

	officerRepo, err := postgres.NewOfficerRepository(pgClient)
	if err != nil {
		return fmt.Errorf("create officer repository: %w", err)
	}
	agencyRepo, err := postgres.NewAgencyRepository(pgClient)
	if err != nil {
		return fmt.Errorf("create agency repository: %w", err)
	}
	unitRepo, err := postgres.NewUnitRepository(pgClient)
	if err != nil {
		return fmt.Errorf("create unit repository: %w", err)
	}
	employmentRepo, err := postgres.NewEmploymentRepository(pgClient)
	if err != nil {
		return fmt.Errorf("create employment repository: %w", err)
	}
	refresher, err := postgres.NewViewRefresher(pgClient)
	if err != nil {
		return fmt.Errorf("create view refresher: %w", err)
	}
	viewSources, err := postgres.NewViewSources(pgClient)
	if err != nil {
		return fmt.Errorf("create view search sources: %w", err)
	}

	workerDeps := workermanager.Deps{
		Config:         cfg.Worker,
		IndexRepo:      indexRepo,
		Refresher:      refresher,
		OfficerRepo:    officerRepo,
		EmploymentRepo: employmentRepo,
		AgencyRepo:     agencyRepo,
		UnitRepo:       unitRepo,
		Logger:         logger,
	}

	var wrkr indexWorker
	var mgr *workermanager.Manager
	if cfg.Worker.Enabled {
		mgr, err = workermanager.New(workerDeps)
		if err != nil {
			return err
		}
		wrkr = mgr
	} else {
		wrkr = workermanager.NewInSituWorker(workerDeps)
	}
	defer func() {
		if err := wrkr.Close(); err != nil {
			logger.Error("close worker", "err", err)
		}
	}()

	officerService := officer.NewService(officer.ServiceDeps{
		Repo:   officerRepo,
		Worker: wrkr,
		Logger: logger,
	})
	agencyService := agency.NewService(agency.ServiceDeps{
		Repo:     agencyRepo,
		UnitRepo: unitRepo,
		Worker:   wrkr,
		Logger:   logger,
	})
	employmentService := employment.NewService(employment.ServiceDeps{
		Repo:   employmentRepo,
		Worker: wrkr,
		Logger: logger,
	})

	var sources []search.Source
	for _, src := range viewSources {
		sources = append(sources, src)
	}
	for _, src := range bleve.Sources(indexRepo) {
		sources = append(sources, src)
	}
	searchService := search.NewService(search.ServiceDeps{
		Sources: sources,
		Logger:  logger,
	})

	// The job queue is in-process, so the async worker runs alongside the
	// API server rather than as a separate deployment.
	eg, ctx := errgroup.WithContext(ctx)
	if mgr != nil {
		eg.Go(func() error {
			return mgr.Run(ctx)
		})
	}
	eg.Go(func() error {
		return server.Serve(ctx, cfg.Service, logger, server.Services{
			Search:     searchService,
			Officer:    officerService,
			Agency:     agencyService,
			Employment: employmentService,
		})
	})
	return eg.Wait()
}

func runMigrations(cfg *Config) error {
	logger := initLogger(cfg.LogLevel)
	logger.Info("spotlight is migrating", "version", Version)

	pgClient, err := initPostgres(logger, cfg)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	ver, err := pgClient.Migrate(cfg.DB)
	if err != nil {
		return fmt.Errorf("problem with migration: %w", err)
	}

	logger.Info("migration done", "version", ver)
	return nil
}

func initLogger(logLevel string) *log.Logrus {
	return log.NewLogrus(
		log.LogrusWithLevel(logLevel),
		log.LogrusWithWriter(os.Stdout),
	)
}

func initPostgres(logger log.Logger, cfg *Config) (*postgres.Client, error) {
	pgClient, err := postgres.NewClient(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("error creating postgres client: %w", err)
	}
	logger.Info("connected to postgres server", "host", cfg.DB.Host, "port", cfg.DB.Port)

	return pgClient, nil
}
