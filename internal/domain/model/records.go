// Package model contains domain records passed between layers.
package model

import (
	"sort"
	"time"
)

// UnknownName is the display name used for references that cannot be resolved.
const UnknownName = "Unknown"

// Person is an employee whose career is tracked.
type Person struct {
	ID   int64
	Name string
}

// Organization is a named employer. ExternalID is the external directory id
// recorded by ingestion, when one could be resolved.
type Organization struct {
	ID         int64
	Name       string
	ExternalID *string
}

// Role is a job title.
type Role struct {
	ID   int64
	Name string
}

// School is an educational institution.
type School struct {
	ID   int64
	Name string
}

// Stint is one raw employment record. A nil End means the stint is current.
type Stint struct {
	ID             int64
	PersonID       int64
	OrganizationID *int64
	RoleID         *int64
	Start          *time.Time
	End            *time.Time
	DurationText   string
	Address        string
}

// IsCurrent reports whether the stint is open-ended.
func (s Stint) IsCurrent() bool { return s.End == nil }

// EducationRecord is one entry of a person's education history.
type EducationRecord struct {
	ID       int64
	PersonID int64
	SchoolID *int64
	Degree   string
	Start    *time.Time
	End      *time.Time
}

// StartYear returns the start year, if known.
func (e EducationRecord) StartYear() *int { return yearOf(e.Start) }

// EndYear returns the end year, if known.
func (e EducationRecord) EndYear() *int { return yearOf(e.End) }

func yearOf(t *time.Time) *int {
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}

// Window selects exit events by end date. Start is optional; End is inclusive.
type Window struct {
	Start *time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	return !t.After(w.End)
}

// IsExit reports whether s is an exit from orgID inside w.
func (w Window) IsExit(s Stint, orgID int64) bool {
	if s.OrganizationID == nil || *s.OrganizationID != orgID || s.End == nil {
		return false
	}
	return w.Contains(*s.End)
}

// SortStints orders stints chronologically: start ascending with unknown
// starts last, then id ascending.
func SortStints(stints []Stint) {
	sort.SliceStable(stints, func(i, j int) bool {
		return StintLess(stints[i], stints[j])
	})
}

// StintLess is the chronological ordering used by SortStints.
func StintLess(a, b Stint) bool {
	switch {
	case a.Start == nil && b.Start == nil:
		return a.ID < b.ID
	case a.Start == nil:
		return false
	case b.Start == nil:
		return true
	case !a.Start.Equal(*b.Start):
		return a.Start.Before(*b.Start)
	default:
		return a.ID < b.ID
	}
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date returning a pointer, handy for nullable fields.
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// ID returns a pointer to id.
func ID(id int64) *int64 { return &id }
