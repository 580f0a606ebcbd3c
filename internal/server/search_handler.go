package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spotlight-project/spotlight/core/search"
)

// search handles GET /v1/search?q=<term>&page=&per_page=&filter[field]=value.
// Repeated filter params for the same field OR together; distinct fields AND.
func (h *apiHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := search.Request{
		Term:    strings.TrimSpace(query.Get("q")),
		Filters: filterQueryParams(query),
	}

	var err error
	if req.Page, err = intQueryParam(query.Get("page")); err != nil {
		h.writeError(w, r, search.InvalidFilterError{Field: "page"})
		return
	}
	if req.PerPage, err = intQueryParam(query.Get("per_page")); err != nil {
		h.writeError(w, r, search.InvalidFilterError{Field: "per_page"})
		return
	}

	pg, err := h.services.Search.Search(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pg)
}

func filterQueryParams(query map[string][]string) search.Filter {
	var filters search.Filter
	for key, values := range query {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		field := key[len("filter[") : len(key)-1]
		if field == "" {
			continue
		}
		if filters == nil {
			filters = search.Filter{}
		}
		filters[field] = append(filters[field], values...)
	}
	return filters
}

func intQueryParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
