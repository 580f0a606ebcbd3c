package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
	"github.com/spotlight-project/spotlight/core/search"
)

type stubSearchService struct {
	page search.Page
	err  error
	req  search.Request
}

func (s *stubSearchService) Search(_ context.Context, req search.Request) (search.Page, error) {
	s.req = req
	return s.page, s.err
}

type stubOfficerService struct {
	officer officer.Officer
	err     error
}

func (s *stubOfficerService) GetAllOfficers(context.Context, officer.Filter) ([]officer.Officer, error) {
	return []officer.Officer{s.officer}, s.err
}

func (s *stubOfficerService) GetOfficerByID(context.Context, string) (officer.Officer, error) {
	return s.officer, s.err
}

func (s *stubOfficerService) UpsertOfficer(context.Context, *officer.Officer) (string, error) {
	return s.officer.ID, s.err
}

func (s *stubOfficerService) DeleteOfficer(context.Context, string) error { return s.err }

type stubEmploymentService struct {
	canonical employment.CanonicalRecord
	err       error

	override *bool
}

func (s *stubEmploymentService) AddRecord(_ context.Context, _ *employment.Record, override *bool) (employment.CanonicalRecord, error) {
	s.override = override
	return s.canonical, s.err
}

func (s *stubEmploymentService) GetRecords(context.Context, string, string) ([]employment.Record, error) {
	return nil, s.err
}

func (s *stubEmploymentService) GetCanonical(context.Context, string, string) (employment.CanonicalRecord, error) {
	return s.canonical, s.err
}

func newAPIHandler(svcs Services) *apiHandler {
	return &apiHandler{logger: log.NewNoop(), services: svcs}
}

func TestSearchHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &stubSearchService{page: search.Page{
			Results: []search.Result{{ID: "off-1", Title: "John Doe", ContentType: search.KindOfficer}},
			Total:   1,
			Page:    1,
			PerPage: 20,
		}}
		h := newAPIHandler(Services{Search: svc})

		req := httptest.NewRequest(http.MethodGet,
			"/v1/search?q=john&page=2&per_page=5&filter[agency_id]=ag-1&filter[agency_id]=ag-2&filter[rank]=SERGEANT", nil)
		w := httptest.NewRecorder()
		h.search(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "john", svc.req.Term)
		assert.Equal(t, 2, svc.req.Page)
		assert.Equal(t, 5, svc.req.PerPage)
		assert.Equal(t, search.Filter{
			"agency_id": {"ag-1", "ag-2"},
			"rank":      {"SERGEANT"},
		}, svc.req.Filters)

		var pg search.Page
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pg))
		assert.Equal(t, 1, pg.Total)
	})

	t.Run("EmptyTerm", func(t *testing.T) {
		h := newAPIHandler(Services{Search: &stubSearchService{err: search.ErrEmptyTerm}})

		w := httptest.NewRecorder()
		h.search(w, httptest.NewRequest(http.MethodGet, "/v1/search?q=", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadPageParam", func(t *testing.T) {
		h := newAPIHandler(Services{Search: &stubSearchService{}})

		w := httptest.NewRecorder()
		h.search(w, httptest.NewRequest(http.MethodGet, "/v1/search?q=x&page=banana", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AllSourcesDown", func(t *testing.T) {
		h := newAPIHandler(Services{Search: &stubSearchService{
			err: search.UnavailableError{Sources: []string{"a", "b"}},
		}})

		w := httptest.NewRecorder()
		h.search(w, httptest.NewRequest(http.MethodGet, "/v1/search?q=x", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestOfficerHandlerNotFound(t *testing.T) {
	h := newAPIHandler(Services{Officer: &stubOfficerService{
		err: officer.NotFoundError{OfficerID: "off-404"},
	}})

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/v1/officers/off-404", nil),
		map[string]string{"id": "off-404"})
	w := httptest.NewRecorder()
	h.getOfficer(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddEmploymentRecordHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &stubEmploymentService{canonical: employment.CanonicalRecord{
			OfficerID: "off-1", AgencyID: "ag-1", BadgeNumber: "1234",
		}}
		h := newAPIHandler(Services{Employment: svc})

		body := `{"officer_id":"off-1","agency_id":"ag-1","badge_number":"1234","override_currently_employed":false}`
		w := httptest.NewRecorder()
		h.addEmploymentRecord(w, httptest.NewRequest(http.MethodPost, "/v1/employment", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.override)
		assert.False(t, *svc.override)

		var canonical employment.CanonicalRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &canonical))
		assert.Equal(t, "1234", canonical.BadgeNumber)
	})

	t.Run("MissingIDs", func(t *testing.T) {
		h := newAPIHandler(Services{Employment: &stubEmploymentService{}})

		w := httptest.NewRecorder()
		h.addEmploymentRecord(w, httptest.NewRequest(http.MethodPost, "/v1/employment", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NoOverrideWhenAbsent", func(t *testing.T) {
		svc := &stubEmploymentService{}
		h := newAPIHandler(Services{Employment: svc})

		body := `{"officer_id":"off-1","agency_id":"ag-1"}`
		w := httptest.NewRecorder()
		h.addEmploymentRecord(w, httptest.NewRequest(http.MethodPost, "/v1/employment", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, svc.override)
	})
}
