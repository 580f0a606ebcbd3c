package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spotlight-project/spotlight/core/employment"
)

type addEmploymentRequest struct {
	employment.Record

	// OverrideCurrentlyEmployed, when set, pins the reconciled employment
	// status instead of deriving it from the newest record.
	OverrideCurrentlyEmployed *bool `json:"override_currently_employed,omitempty"`
}

func (h *apiHandler) addEmploymentRecord(w http.ResponseWriter, r *http.Request) {
	var req addEmploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.OfficerID == "" || req.AgencyID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "officer_id and agency_id are required"})
		return
	}

	canonical, err := h.services.Employment.AddRecord(r.Context(), &req.Record, req.OverrideCurrentlyEmployed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, canonical)
}

func (h *apiHandler) listEmploymentRecords(w http.ResponseWriter, r *http.Request) {
	agencyID := r.URL.Query().Get("agency_id")
	if agencyID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "agency_id is required"})
		return
	}

	records, err := h.services.Employment.GetRecords(r.Context(), mux.Vars(r)["id"], agencyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (h *apiHandler) getCanonicalEmployment(w http.ResponseWriter, r *http.Request) {
	agencyID := r.URL.Query().Get("agency_id")
	if agencyID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "agency_id is required"})
		return
	}

	canonical, err := h.services.Employment.GetCanonical(r.Context(), mux.Vars(r)["id"], agencyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, canonical)
}
