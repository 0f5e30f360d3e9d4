// Package repository provides read-only access to career records.
package repository

import (
	"context"

	"github.com/okian/hopgraph/internal/domain/model"
)

// Store provides batched, read-only access to the record snapshot. Every
// method is a single round-trip regardless of how many ids it is given.
type Store interface {
	// SearchOrganizations returns organizations whose name contains
	// fragment, case-insensitively, ordered by name.
	SearchOrganizations(ctx context.Context, fragment string, limit int) ([]model.Organization, error)

	// ExitStints returns the closed stints at orgID whose end date falls in w.
	ExitStints(ctx context.Context, orgID int64, w model.Window) ([]model.Stint, error)

	// StintsByPeople returns every stint of the given people, keyed by person.
	StintsByPeople(ctx context.Context, personIDs []int64) (map[int64][]model.Stint, error)

	// EducationsByPeople returns every education record of the given people.
	EducationsByPeople(ctx context.Context, personIDs []int64) (map[int64][]model.EducationRecord, error)

	// CurrentEmployees returns the people holding an open-ended stint at any
	// of orgIDs, in id order.
	CurrentEmployees(ctx context.Context, orgIDs []int64) ([]int64, error)

	// People returns the given people.
	People(ctx context.Context, ids []int64) ([]model.Person, error)

	// Organizations returns every organization.
	Organizations(ctx context.Context) ([]model.Organization, error)

	// Roles returns every role.
	Roles(ctx context.Context) ([]model.Role, error)

	// RoleIDsMatching returns the roles whose name contains fragment,
	// case-insensitively.
	RoleIDsMatching(ctx context.Context, fragment string) ([]int64, error)

	// Schools returns every school.
	Schools(ctx context.Context) ([]model.School, error)

	// Close releases the underlying resources.
	Close() error
}
