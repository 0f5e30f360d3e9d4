package connection

import (
	"time"

	"github.com/okian/hopgraph/internal/domain/model"
)

// Viewer is the background a viewer declared about themselves. It is only
// ever read.
type Viewer struct {
	PersonID   int64
	Stints     []ViewerStint
	Educations []ViewerEducation
}

// ViewerStint is one tenure window of the viewer.
type ViewerStint struct {
	OrganizationID int64
	Role           string
	Start          *time.Time
	End            *time.Time
}

// ViewerEducation is one school attended by the viewer.
type ViewerEducation struct {
	SchoolID  int64
	Degree    string
	StartYear *int
	EndYear   *int
}

// Candidate is the background of a person being compared to the viewer.
type Candidate struct {
	PersonID   int64
	Stints     []CandidateStint
	Educations []CandidateEducation
}

// CandidateStint is one employment record of a candidate.
type CandidateStint struct {
	StintID          int64
	OrganizationID   *int64
	OrganizationName string
	Role             string
	Start            *time.Time
	End              *time.Time
}

// CandidateEducation is one education record of a candidate.
type CandidateEducation struct {
	RecordID   int64
	SchoolID   *int64
	SchoolName string
	Degree     string
	StartYear  *int
	EndYear    *int
}

// NewViewer builds a viewer from their own records. Records without an
// organization or school carry no identity and are skipped.
func NewViewer(personID int64, stints []model.Stint, edus []model.EducationRecord, dir *model.Directory) Viewer {
	v := Viewer{PersonID: personID}
	for _, s := range stints {
		if s.OrganizationID == nil {
			continue
		}
		v.Stints = append(v.Stints, ViewerStint{
			OrganizationID: *s.OrganizationID,
			Role:           dir.RoleName(s.RoleID),
			Start:          s.Start,
			End:            s.End,
		})
	}
	for _, e := range edus {
		if e.SchoolID == nil {
			continue
		}
		v.Educations = append(v.Educations, ViewerEducation{
			SchoolID:  *e.SchoolID,
			Degree:    e.Degree,
			StartYear: e.StartYear(),
			EndYear:   e.EndYear(),
		})
	}
	return v
}

// NewCandidate builds a candidate from raw records, resolving names through dir.
func NewCandidate(personID int64, stints []model.Stint, edus []model.EducationRecord, dir *model.Directory) Candidate {
	c := Candidate{PersonID: personID}
	for _, s := range stints {
		c.Stints = append(c.Stints, CandidateStint{
			StintID:          s.ID,
			OrganizationID:   s.OrganizationID,
			OrganizationName: dir.OrganizationName(s.OrganizationID),
			Role:             dir.RoleName(s.RoleID),
			Start:            s.Start,
			End:              s.End,
		})
	}
	for _, e := range edus {
		c.Educations = append(c.Educations, CandidateEducation{
			RecordID:   e.ID,
			SchoolID:   e.SchoolID,
			SchoolName: dir.SchoolName(e.SchoolID),
			Degree:     e.Degree,
			StartYear:  e.StartYear(),
			EndYear:    e.EndYear(),
		})
	}
	return c
}
