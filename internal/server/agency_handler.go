package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/spotlight-project/spotlight/core/agency"
)

func (h *apiHandler) listAgencies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	flt := agency.Filter{
		States:        query["state"],
		SortBy:        query.Get("sort"),
		SortDirection: query.Get("direction"),
	}
	flt.Size, _ = strconv.Atoi(query.Get("size"))
	flt.Offset, _ = strconv.Atoi(query.Get("offset"))

	agencies, err := h.services.Agency.GetAllAgencies(r.Context(), flt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": agencies})
}

func (h *apiHandler) getAgency(w http.ResponseWriter, r *http.Request) {
	a, err := h.services.Agency.GetAgencyByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *apiHandler) upsertAgency(w http.ResponseWriter, r *http.Request) {
	var a agency.Agency
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.services.Agency.UpsertAgency(r.Context(), &a)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *apiHandler) deleteAgency(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Agency.DeleteAgency(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) listUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.services.Agency.GetUnitsByAgency(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": units})
}

func (h *apiHandler) upsertUnit(w http.ResponseWriter, r *http.Request) {
	var u agency.Unit
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	u.AgencyID = mux.Vars(r)["id"]

	id, err := h.services.Agency.UpsertUnit(r.Context(), &u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *apiHandler) deleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Agency.DeleteUnit(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
