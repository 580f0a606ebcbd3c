package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/goto/salt/log"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/core/search"
)

type Config struct {
	Host string `yaml:"host" mapstructure:"host" default:"0.0.0.0"`
	Port int    `yaml:"port" mapstructure:"port" default:"8080"`

	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period" mapstructure:"shutdown_grace_period" default:"10s"`
}

func (cfg Config) addr() string { return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port) }

// SearchService answers cross-entity search requests.
type SearchService interface {
	Search(ctx context.Context, req search.Request) (search.Page, error)
}

type OfficerService interface {
	GetAllOfficers(ctx context.Context, flt officer.Filter) ([]officer.Officer, error)
	GetOfficerByID(ctx context.Context, id string) (officer.Officer, error)
	UpsertOfficer(ctx context.Context, o *officer.Officer) (string, error)
	DeleteOfficer(ctx context.Context, id string) error
}

type AgencyService interface {
	GetAllAgencies(ctx context.Context, flt agency.Filter) ([]agency.Agency, error)
	GetAgencyByID(ctx context.Context, id string) (agency.Agency, error)
	UpsertAgency(ctx context.Context, a *agency.Agency) (string, error)
	DeleteAgency(ctx context.Context, id string) error
	GetUnitsByAgency(ctx context.Context, agencyID string) ([]agency.Unit, error)
	UpsertUnit(ctx context.Context, u *agency.Unit) (string, error)
	DeleteUnit(ctx context.Context, id string) error
}

type EmploymentService interface {
	AddRecord(ctx context.Context, rec *employment.Record, overrideCurrentlyEmployed *bool) (employment.CanonicalRecord, error)
	GetRecords(ctx context.Context, officerID, agencyID string) ([]employment.Record, error)
	GetCanonical(ctx context.Context, officerID, agencyID string) (employment.CanonicalRecord, error)
}

type Services struct {
	Search     SearchService
	Officer    OfficerService
	Agency     AgencyService
	Employment EmploymentService
}

// Serve runs the HTTP API until ctx is canceled, then drains in-flight
// requests for the configured grace period.
func Serve(ctx context.Context, config Config, logger log.Logger, svcs Services) error {
	api := &apiHandler{logger: logger, services: svcs}

	r := mux.NewRouter()
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(false)))
	r.NotFoundHandler = http.HandlerFunc(api.notFound)

	r.HandleFunc("/v1/search", api.search).Methods(http.MethodGet)

	r.HandleFunc("/v1/officers", api.listOfficers).Methods(http.MethodGet)
	r.HandleFunc("/v1/officers", api.upsertOfficer).Methods(http.MethodPost)
	r.HandleFunc("/v1/officers/{id}", api.getOfficer).Methods(http.MethodGet)
	r.HandleFunc("/v1/officers/{id}", api.deleteOfficer).Methods(http.MethodDelete)

	r.HandleFunc("/v1/agencies", api.listAgencies).Methods(http.MethodGet)
	r.HandleFunc("/v1/agencies", api.upsertAgency).Methods(http.MethodPost)
	r.HandleFunc("/v1/agencies/{id}", api.getAgency).Methods(http.MethodGet)
	r.HandleFunc("/v1/agencies/{id}", api.deleteAgency).Methods(http.MethodDelete)
	r.HandleFunc("/v1/agencies/{id}/units", api.listUnits).Methods(http.MethodGet)
	r.HandleFunc("/v1/agencies/{id}/units", api.upsertUnit).Methods(http.MethodPost)
	r.HandleFunc("/v1/units/{id}", api.deleteUnit).Methods(http.MethodDelete)

	r.HandleFunc("/v1/employment", api.addEmploymentRecord).Methods(http.MethodPost)
	r.HandleFunc("/v1/officers/{id}/employment", api.listEmploymentRecords).Methods(http.MethodGet)
	r.HandleFunc("/v1/officers/{id}/employment/canonical", api.getCanonicalEmployment).Methods(http.MethodGet)

	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "pong")
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:    config.addr(),
		Handler: handlers.CompressHandler(r),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("api server: %w", err)

	case <-ctx.Done():
		logger.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	}
}
