package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goto/salt/log"

	"github.com/spotlight-project/spotlight/core/agency"
	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/core/search"
)

type apiHandler struct {
	logger   log.Logger
	services Services
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", "err", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Invalid input never
// retries, missing entities 404, and a fully degraded search surfaces as 503
// so callers know to back off.
func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case isBadRequest(err):
		status = http.StatusBadRequest
	case isNotFoundErr(err):
		status = http.StatusNotFound
	case isUnavailable(err):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *apiHandler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such route"})
}

func isBadRequest(err error) bool {
	var filterErr search.InvalidFilterError
	var invalidOfficer officer.InvalidError
	return errors.Is(err, search.ErrEmptyTerm) ||
		errors.Is(err, employment.ErrNilRecord) ||
		errors.Is(err, employment.ErrNoRecords) ||
		errors.Is(err, agency.ErrEmptyName) ||
		errors.As(err, &filterErr) ||
		errors.As(err, &invalidOfficer)
}

func isNotFoundErr(err error) bool {
	var officerNFE officer.NotFoundError
	var agencyNFE agency.NotFoundError
	var employmentNFE employment.NotFoundError
	return errors.As(err, &officerNFE) ||
		errors.As(err, &agencyNFE) ||
		errors.As(err, &employmentNFE)
}

func isUnavailable(err error) bool {
	var unavailable search.UnavailableError
	return errors.As(err, &unavailable)
}
