// Package types contains the response shapes shared by the service and the HTTP adapter.
package types

import "time"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Organization is a search hit.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Destination is one organization reached at a hop.
type Destination struct {
	OrganizationID   int64  `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	Count            int    `json:"count"`
	TotalCount       int    `json:"total_count"`
	Years            []int  `json:"years"`
	RoleMatch        bool   `json:"role_match"`
}

// Transitions maps a hop number ("1", "2", ...) to its ordered destinations.
type Transitions map[string][]Destination

// HistoryEntry is one stint in a person's rendered history.
type HistoryEntry struct {
	Organization      string  `json:"organization"`
	Role              *string `json:"role"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Duration          string  `json:"duration,omitempty"`
	Address           string  `json:"address,omitempty"`
	TransitionSegment string  `json:"transition_segment,omitempty"`
}

// MatchDetail explains which connection filters one record satisfied.
type MatchDetail struct {
	Section  string   `json:"section"`
	RecordID int64    `json:"record_id"`
	Name     string   `json:"name"`
	Fields   []string `json:"fields"`
}

// EmployeeTransition is one person who reached a destination at an exact hop.
type EmployeeTransition struct {
	PersonID           int64          `json:"person_id"`
	PersonName         string         `json:"person_name"`
	ExitDate           string         `json:"exit_date"`
	TransitionDate     string         `json:"transition_date"`
	History            []HistoryEntry `json:"history"`
	RoleMatch          bool           `json:"role_match"`
	IsMatch            bool           `json:"is_match"`
	FilterMatchDetails []MatchDetail  `json:"filter_match_details"`
}

// RelatedPerson is a current employee of a destination sharing the viewer's background.
type RelatedPerson struct {
	PersonID           int64          `json:"person_id"`
	PersonName         string         `json:"person_name"`
	ConnectionType     string         `json:"connection_type"`
	History            []HistoryEntry `json:"history"`
	IsMatch            bool           `json:"is_match"`
	FilterMatchDetails []MatchDetail  `json:"filter_match_details"`
}

// RelatedGroup is the related background of one destination.
type RelatedGroup struct {
	Count      int             `json:"count"`
	MatchCount int             `json:"match_count"`
	Related    []RelatedPerson `json:"related"`
}

// RelatedBackground maps a destination id to its group.
type RelatedBackground map[string]RelatedGroup

// FormatDate renders a nullable date.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate parses a wire date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
