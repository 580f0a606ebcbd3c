package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/spotlight-project/spotlight/core/officer"
)

func (h *apiHandler) listOfficers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	flt := officer.Filter{
		AgencyIDs:     query["agency_id"],
		SortBy:        query.Get("sort"),
		SortDirection: query.Get("direction"),
	}
	flt.Size, _ = strconv.Atoi(query.Get("size"))
	flt.Offset, _ = strconv.Atoi(query.Get("offset"))

	officers, err := h.services.Officer.GetAllOfficers(r.Context(), flt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": officers})
}

func (h *apiHandler) getOfficer(w http.ResponseWriter, r *http.Request) {
	o, err := h.services.Officer.GetOfficerByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *apiHandler) upsertOfficer(w http.ResponseWriter, r *http.Request) {
	var o officer.Officer
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.services.Officer.UpsertOfficer(r.Context(), &o)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *apiHandler) deleteOfficer(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Officer.DeleteOfficer(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
