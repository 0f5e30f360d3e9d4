package api

import (
	"net/http"

	service "github.com/okian/hopgraph/internal/app"
)

// handleOrganizations serves GET /organizations?org_name=.
func (s *Server) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	name := p.str("org_name")
	if name == "" {
		p.fail("org_name is required")
	}
	if p.err != nil {
		s.fail(w, r, p.err)
		return
	}
	orgs, err := s.deps.SearchOrganizations(r.Context(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

// handleOrgTransitions serves GET /org-transitions.
func (s *Server) handleOrgTransitions(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	q := service.TransitionsQuery{
		SourceOrgID: p.requiredInt64("org_id"),
		StartDate:   p.date("start_date"),
		EndDate:     p.date("end_date"),
		Hops:        p.positiveInt("hops"),
		Role:        p.str("role"),
	}
	if p.err != nil {
		s.fail(w, r, p.err)
		return
	}
	out, err := s.deps.Transitions(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEmployeeTransitions serves GET /employee-transitions.
func (s *Server) handleEmployeeTransitions(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	q := service.EmployeeQuery{
		SourceOrgID: p.requiredInt64("source_org_id"),
		DestOrgID:   p.requiredInt64("dest_org_id"),
		Hop:         p.positiveInt("hop"),
		StartDate:   p.date("start_date"),
		EndDate:     p.date("end_date"),
		Role:        p.str("role"),
		ViewerID:    p.optionalInt64("viewer_id"),
		Filters:     p.filters(),
	}
	if q.Hop == 0 && p.err == nil {
		p.fail("hop is required")
	}
	if p.err != nil {
		s.fail(w, r, p.err)
		return
	}
	out, err := s.deps.EmployeeTransitions(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRelatedBackground serves GET /related-background.
func (s *Server) handleRelatedBackground(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	q := service.RelatedQuery{
		DestOrgIDs:  p.int64List("dest_org_ids"),
		ViewerID:    p.requiredInt64("viewer_id"),
		SourceOrgID: p.optionalInt64("source_org_id"),
		StartDate:   p.date("start_date"),
		EndDate:     p.date("end_date"),
		Hops:        p.positiveInt("hops"),
		Filters:     p.filters(),
	}
	if len(q.DestOrgIDs) == 0 && p.err == nil {
		p.fail("dest_org_ids is required")
	}
	if p.err != nil {
		s.fail(w, r, p.err)
		return
	}
	out, err := s.deps.RelatedBackground(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
