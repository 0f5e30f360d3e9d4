package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/hopgraph/internal/adapters/http/api"
	service "github.com/okian/hopgraph/internal/app"
	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/types"
	"github.com/okian/hopgraph/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps records the last query of each kind.
type mockDeps struct {
	err error

	searched  string
	transQ    service.TransitionsQuery
	employeeQ service.EmployeeQuery
	relatedQ  service.RelatedQuery
}

func (m *mockDeps) SearchOrganizations(_ context.Context, name string) ([]types.Organization, error) {
	m.searched = name
	if m.err != nil {
		return nil, m.err
	}
	return []types.Organization{{ID: 7, Name: "Globex"}}, nil
}

func (m *mockDeps) Transitions(_ context.Context, q service.TransitionsQuery) (types.Transitions, error) {
	m.transQ = q
	if m.err != nil {
		return nil, m.err
	}
	return types.Transitions{"1": {{OrganizationID: 7, OrganizationName: "Globex", Count: 2, TotalCount: 2, Years: []int{2020}}}}, nil
}

func (m *mockDeps) EmployeeTransitions(_ context.Context, q service.EmployeeQuery) ([]types.EmployeeTransition, error) {
	m.employeeQ = q
	if m.err != nil {
		return nil, m.err
	}
	return []types.EmployeeTransition{{PersonID: 1, PersonName: "Alice", History: []types.HistoryEntry{}, FilterMatchDetails: []types.MatchDetail{}}}, nil
}

func (m *mockDeps) RelatedBackground(_ context.Context, q service.RelatedQuery) (types.RelatedBackground, error) {
	m.relatedQ = q
	if m.err != nil {
		return nil, m.err
	}
	return types.RelatedBackground{"7": {Related: []types.RelatedPerson{}}}, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any { return map[string]any{"started": true} }

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, mockStats{}).Register(context.Background(), mux)

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then non-GET requests are not found", func() {
			w := serve(mux, http.MethodPost, "/organizations?org_name=glo")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then every response carries a request id", func() {
			w := serve(mux, http.MethodGet, "/organizations?org_name=glo")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/organizations?org_name=glo", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "8d3e4a52-5c1e-4f0e-9a43-6f1b2f0c9d11")
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "8d3e4a52-5c1e-4f0e-9a43-6f1b2f0c9d11")
		})
	})
}

func TestOrganizations(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, nil).Register(context.Background(), mux)

		Convey("When searching by name", func() {
			w := serve(mux, http.MethodGet, "/organizations?org_name=glob")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.searched, ShouldEqual, "glob")

			var orgs []types.Organization
			So(json.Unmarshal(w.Body.Bytes(), &orgs), ShouldBeNil)
			So(orgs, ShouldResemble, []types.Organization{{ID: 7, Name: "Globex"}})
		})

		Convey("When the name is missing", func() {
			w := serve(mux, http.MethodGet, "/organizations")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
		})
	})
}

func TestOrgTransitions(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, nil).Register(context.Background(), mux)

		Convey("When every parameter is valid", func() {
			w := serve(mux, http.MethodGet, "/org-transitions?org_id=3&start_date=2019-01-01&end_date=2020-12-31&hops=2&role=engineer")
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then the query is passed through", func() {
				q := deps.transQ
				So(q.SourceOrgID, ShouldEqual, int64(3))
				So(q.Hops, ShouldEqual, 2)
				So(q.Role, ShouldEqual, "engineer")
				So(q.StartDate.Format(types.DateLayout), ShouldEqual, "2019-01-01")
				So(q.EndDate.Format(types.DateLayout), ShouldEqual, "2020-12-31")
			})

			Convey("Then hops are keyed by number", func() {
				var out types.Transitions
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out["1"][0].OrganizationName, ShouldEqual, "Globex")
			})
		})

		Convey("When optional parameters are absent", func() {
			w := serve(mux, http.MethodGet, "/org-transitions?org_id=3")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.transQ.Hops, ShouldEqual, 0)
			So(deps.transQ.StartDate, ShouldBeNil)
		})

		Convey("When a date is malformed", func() {
			w := serve(mux, http.MethodGet, "/org-transitions?org_id=3&end_date=31/12/2020")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "end_date")
		})

		Convey("When org_id is missing or invalid", func() {
			So(serve(mux, http.MethodGet, "/org-transitions").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/org-transitions?org_id=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/org-transitions?org_id=3&hops=-1").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the query", func() {
			deps.err = errors.Join(service.ErrInvalidQuery, errors.New("hops must not exceed 10"))
			w := serve(mux, http.MethodGet, "/org-transitions?org_id=3&hops=50")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service fails", func() {
			deps.err = errors.New("connection refused")
			w := serve(mux, http.MethodGet, "/org-transitions?org_id=3")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decodeError(w)
			So(body["code"], ShouldEqual, "internal_error")
			So(body["message"], ShouldNotContainSubstring, "connection refused")
		})
	})
}

func TestEmployeeTransitions(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, nil).Register(context.Background(), mux)

		Convey("When filters are repeated", func() {
			w := serve(mux, http.MethodGet, "/employee-transitions?source_org_id=1&dest_org_id=3&hop=2&viewer_id=9"+
				"&past_companies=Initech&past_companies=Hooli%2C%20Inc.&tenure_options=with-me&tenure_options=near-me"+
				"&colleges=State%20University&batch_options=exact&departments=physics&past_roles=engineer")
			So(w.Code, ShouldEqual, http.StatusOK)

			q := deps.employeeQ
			So(q.SourceOrgID, ShouldEqual, int64(1))
			So(q.DestOrgID, ShouldEqual, int64(3))
			So(q.Hop, ShouldEqual, 2)
			So(*q.ViewerID, ShouldEqual, int64(9))
			So(q.Filters.PastCompanies, ShouldResemble, []string{"Initech", "Hooli, Inc."})
			So(q.Filters.TenureOptions, ShouldResemble, []connection.TenureOption{connection.TenureWithMe, connection.TenureNearMe})
			So(q.Filters.BatchOptions, ShouldResemble, []connection.BatchOption{connection.BatchExact})
			So(q.Filters.Colleges, ShouldResemble, []string{"State University"})
			So(q.Filters.Departments, ShouldResemble, []string{"physics"})
			So(q.Filters.PastRoles, ShouldResemble, []string{"engineer"})
		})

		Convey("When no filter is given", func() {
			w := serve(mux, http.MethodGet, "/employee-transitions?source_org_id=1&dest_org_id=3&hop=1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.employeeQ.ViewerID, ShouldBeNil)
			So(deps.employeeQ.Filters.Active(), ShouldBeFalse)
		})

		Convey("When an option is unknown", func() {
			w := serve(mux, http.MethodGet, "/employee-transitions?source_org_id=1&dest_org_id=3&hop=1&tenure_options=forever")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "forever")
		})

		Convey("When the hop is missing", func() {
			w := serve(mux, http.MethodGet, "/employee-transitions?source_org_id=1&dest_org_id=3")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRelatedBackground(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, nil).Register(context.Background(), mux)

		Convey("When destinations are comma separated and repeated", func() {
			w := serve(mux, http.MethodGet, "/related-background?dest_org_ids=7,8&dest_org_ids=9&viewer_id=4&source_org_id=1&hops=2")
			So(w.Code, ShouldEqual, http.StatusOK)
			q := deps.relatedQ
			So(q.DestOrgIDs, ShouldResemble, []int64{7, 8, 9})
			So(q.ViewerID, ShouldEqual, int64(4))
			So(*q.SourceOrgID, ShouldEqual, int64(1))
			So(q.Hops, ShouldEqual, 2)

			var out types.RelatedBackground
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out, ShouldContainKey, "7")
		})

		Convey("When destinations are missing", func() {
			w := serve(mux, http.MethodGet, "/related-background?viewer_id=4")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a destination is not a number", func() {
			w := serve(mux, http.MethodGet, "/related-background?dest_org_ids=7,x&viewer_id=4")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the viewer is missing", func() {
			w := serve(mux, http.MethodGet, "/related-background?dest_org_ids=7")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
