// Package connection decides whether a candidate shares a viewer's
// professional or educational background.
package connection

import (
	"fmt"
	"strings"
)

// TenureOption constrains when a candidate worked at a shared organization.
type TenureOption string

// Tenure options.
const (
	TenureAnyTime TenureOption = "any-time"
	TenureWithMe  TenureOption = "with-me"
	TenureNearMe  TenureOption = "near-me"
)

// BatchOption constrains the class years of a shared school.
type BatchOption string

// Batch options.
const (
	BatchAny   BatchOption = "any"
	BatchExact BatchOption = "exact"
	BatchClose BatchOption = "close"
)

// ParseTenureOption validates a tenure option.
func ParseTenureOption(s string) (TenureOption, error) {
	switch o := TenureOption(strings.ToLower(strings.TrimSpace(s))); o {
	case TenureAnyTime, TenureWithMe, TenureNearMe:
		return o, nil
	default:
		return "", fmt.Errorf("%w: tenure option %q", ErrUnknownOption, s)
	}
}

// ParseBatchOption validates a batch option.
func ParseBatchOption(s string) (BatchOption, error) {
	switch o := BatchOption(strings.ToLower(strings.TrimSpace(s))); o {
	case BatchAny, BatchExact, BatchClose:
		return o, nil
	default:
		return "", fmt.Errorf("%w: batch option %q", ErrUnknownOption, s)
	}
}

// Filters is the viewer-selected connection filter set. Every empty field
// is inactive.
type Filters struct {
	PastCompanies []string       `json:"past_companies,omitempty"`
	PastRoles     []string       `json:"past_roles,omitempty"`
	TenureOptions []TenureOption `json:"tenure_options,omitempty"`
	Colleges      []string       `json:"colleges,omitempty"`
	Departments   []string       `json:"departments,omitempty"`
	BatchOptions  []BatchOption  `json:"batch_options,omitempty"`
}

// WorkActive reports whether any work filter is selected.
func (f Filters) WorkActive() bool {
	return len(f.PastCompanies) > 0 || len(f.PastRoles) > 0 || len(f.TenureOptions) > 0
}

// EducationActive reports whether any education filter is selected.
func (f Filters) EducationActive() bool {
	return len(f.Colleges) > 0 || len(f.Departments) > 0 || len(f.BatchOptions) > 0
}

// Active reports whether any filter is selected.
func (f Filters) Active() bool { return f.WorkActive() || f.EducationActive() }
