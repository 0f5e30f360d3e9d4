package service

import (
	"github.com/okian/hopgraph/internal/domain/career"
	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/internal/domain/related"
	"github.com/okian/hopgraph/internal/domain/transition"
	"github.com/okian/hopgraph/internal/domain/types"
)

func employeeTransition(m transition.Match, req *request, isMatch bool, evidence []connection.Evidence) types.EmployeeTransition {
	history := make([]types.HistoryEntry, 0, len(m.History))
	for _, h := range m.History {
		history = append(history, historyEntry(h.Stint, h.Segment, req.dir))
	}
	return types.EmployeeTransition{
		PersonID:           m.PersonID,
		PersonName:         m.PersonName,
		ExitDate:           m.ExitDate.Format(types.DateLayout),
		TransitionDate:     m.TransitionDate.Format(types.DateLayout),
		History:            history,
		RoleMatch:          m.RoleMatch,
		IsMatch:            isMatch,
		FilterMatchDetails: matchDetails(evidence),
	}
}

func relatedGroup(g related.Group, req *request) types.RelatedGroup {
	out := types.RelatedGroup{
		Count:      g.Count,
		MatchCount: g.MatchCount,
		Related:    make([]types.RelatedPerson, 0, len(g.Related)),
	}
	for _, p := range g.Related {
		history := make([]types.HistoryEntry, 0, len(p.History))
		for _, st := range p.History {
			history = append(history, historyEntry(st, "", req.dir))
		}
		out.Related = append(out.Related, types.RelatedPerson{
			PersonID:           p.PersonID,
			PersonName:         p.PersonName,
			ConnectionType:     string(p.ConnectionType),
			History:            history,
			IsMatch:            p.IsMatch,
			FilterMatchDetails: matchDetails(p.Evidence),
		})
	}
	return out
}

func historyEntry(st model.Stint, seg career.Segment, dir *model.Directory) types.HistoryEntry {
	e := types.HistoryEntry{
		Organization:      dir.OrganizationName(st.OrganizationID),
		StartDate:         types.FormatDate(st.Start),
		EndDate:           types.FormatDate(st.End),
		Duration:          st.DurationText,
		Address:           st.Address,
		TransitionSegment: string(seg),
	}
	if role := dir.RoleName(st.RoleID); role != "" {
		e.Role = &role
	}
	return e
}

func matchDetails(evidence []connection.Evidence) []types.MatchDetail {
	out := make([]types.MatchDetail, 0, len(evidence))
	for _, ev := range evidence {
		out = append(out, types.MatchDetail{
			Section:  ev.Section,
			RecordID: ev.RecordID,
			Name:     ev.Name,
			Fields:   ev.Fields,
		})
	}
	return out
}
