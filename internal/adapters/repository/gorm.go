package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/pkg/logger"
	"github.com/okian/hopgraph/pkg/metrics"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Table rows. Column names follow the ingestion schema.

type employeeRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (employeeRow) TableName() string { return "employees" }

type organizationRow struct {
	ID            int64   `gorm:"primaryKey"`
	Name          string  `gorm:"not null;uniqueIndex"`
	LinkedinOrgID *string `gorm:"column:linkedin_org_id;index"`
}

func (organizationRow) TableName() string { return "organizations" }

type roleRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

func (roleRow) TableName() string { return "roles" }

type schoolRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

func (schoolRow) TableName() string { return "schools" }

type experienceRow struct {
	ID             int64      `gorm:"primaryKey"`
	EmployeeID     int64      `gorm:"not null;index"`
	OrganizationID *int64     `gorm:"index"`
	RoleID         *int64     `gorm:"index"`
	StartDate      *time.Time `gorm:"type:date"`
	EndDate        *time.Time `gorm:"type:date"`
	DurationText   *string
	Address        *string
}

func (experienceRow) TableName() string { return "experiences" }

type educationRow struct {
	ID         int64 `gorm:"primaryKey"`
	EmployeeID int64 `gorm:"not null;index"`
	SchoolID   *int64
	Degree     *string
	StartDate  *time.Time `gorm:"type:date"`
	EndDate    *time.Time `gorm:"type:date"`
}

func (educationRow) TableName() string { return "educations" }

// GormStore reads records from a relational database through gorm.
type GormStore struct {
	db  *gorm.DB
	log logger.Logger
}

// OpenGorm connects to a postgres or sqlite database.
func OpenGorm(ctx context.Context, driver, dsn string, opts ...Option) (*GormStore, error) {
	cfg := newSettings(opts)

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  cfg.gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// each sqlite connection to an in-memory database sees its own data
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	s := &GormStore{db: db, log: cfg.log}
	if cfg.autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	if cfg.snapshotPath != "" {
		snap, err := LoadSnapshot(cfg.snapshotPath)
		if err != nil {
			return nil, err
		}
		if err := s.Import(ctx, snap); err != nil {
			return nil, err
		}
	}
	cfg.log.Info(ctx, "store connected", logger.String("driver", driver))
	return s, nil
}

// NewGormStore wraps an existing connection.
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	cfg := newSettings(opts)
	return &GormStore{db: db, log: cfg.log}
}

// DB returns the underlying connection.
func (s *GormStore) DB() *gorm.DB { return s.db }

// Migrate creates missing tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&employeeRow{}, &organizationRow{}, &roleRow{}, &schoolRow{}, &experienceRow{}, &educationRow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Import writes snap into an empty database. A database that already holds
// people is left untouched.
func (s *GormStore) Import(ctx context.Context, snap *Snapshot) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&employeeRow{}).Count(&n).Error; err != nil {
		return s.fail(ctx, "import", err)
	}
	if n > 0 {
		s.log.Warn(ctx, "database already populated; snapshot import skipped", logger.Int64("people", n))
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return importSnapshot(tx, snap)
	})
	if err != nil {
		return s.fail(ctx, "import", err)
	}
	s.log.Info(ctx, "snapshot imported",
		logger.Int("people", len(snap.People)),
		logger.Int("stints", len(snap.Stints)))
	return nil
}

func importSnapshot(tx *gorm.DB, snap *Snapshot) error {
	const batch = 500
	var (
		people  []employeeRow
		orgs    []organizationRow
		roles   []roleRow
		schools []schoolRow
		exps    []experienceRow
		edus    []educationRow
	)
	for _, p := range snap.People {
		people = append(people, employeeRow{ID: p.ID, Name: p.Name})
	}
	for _, o := range snap.Organizations {
		orgs = append(orgs, organizationRow{ID: o.ID, Name: o.Name, LinkedinOrgID: o.ExternalID})
	}
	for _, r := range snap.Roles {
		roles = append(roles, roleRow{ID: r.ID, Name: r.Name})
	}
	for _, sc := range snap.Schools {
		schools = append(schools, schoolRow{ID: sc.ID, Name: sc.Name})
	}
	for _, st := range snap.Stints {
		exps = append(exps, experienceRow{
			ID:             st.ID,
			EmployeeID:     st.PersonID,
			OrganizationID: st.OrganizationID,
			RoleID:         st.RoleID,
			StartDate:      st.Start,
			EndDate:        st.End,
			DurationText:   optional(st.DurationText),
			Address:        optional(st.Address),
		})
	}
	for _, e := range snap.Educations {
		edus = append(edus, educationRow{
			ID:         e.ID,
			EmployeeID: e.PersonID,
			SchoolID:   e.SchoolID,
			Degree:     optional(e.Degree),
			StartDate:  e.Start,
			EndDate:    e.End,
		})
	}
	for _, rows := range []any{&people, &orgs, &roles, &schools, &exps, &edus} {
		if err := tx.CreateInBatches(rows, batch).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) fail(ctx context.Context, op string, err error) error {
	metrics.RecordStoreError(op)
	s.log.Error(ctx, "store call failed", logger.String("operation", op), logger.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}

// SearchOrganizations implements Store.
func (s *GormStore) SearchOrganizations(ctx context.Context, fragment string, limit int) ([]model.Organization, error) {
	defer observe("search_organizations", time.Now())
	var rows []organizationRow
	q := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(fragment)).
		Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "search_organizations", err)
	}
	out := make([]model.Organization, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// ExitStints implements Store.
func (s *GormStore) ExitStints(ctx context.Context, orgID int64, w model.Window) ([]model.Stint, error) {
	defer observe("exit_stints", time.Now())
	var rows []experienceRow
	q := s.db.WithContext(ctx).
		Where("organization_id = ? AND end_date IS NOT NULL AND end_date <= ?", orgID, w.End)
	if w.Start != nil {
		q = q.Where("end_date >= ?", *w.Start)
	}
	if err := q.Order("end_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "exit_stints", err)
	}
	out := make([]model.Stint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// StintsByPeople implements Store.
func (s *GormStore) StintsByPeople(ctx context.Context, personIDs []int64) (map[int64][]model.Stint, error) {
	defer observe("stints_by_people", time.Now())
	out := make(map[int64][]model.Stint, len(personIDs))
	if len(personIDs) == 0 {
		return out, nil
	}
	var rows []experienceRow
	err := s.db.WithContext(ctx).
		Where("employee_id IN ?", personIDs).
		Order("employee_id ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail(ctx, "stints_by_people", err)
	}
	for _, r := range rows {
		out[r.EmployeeID] = append(out[r.EmployeeID], r.toModel())
	}
	for pid := range out {
		model.SortStints(out[pid])
	}
	return out, nil
}

// EducationsByPeople implements Store.
func (s *GormStore) EducationsByPeople(ctx context.Context, personIDs []int64) (map[int64][]model.EducationRecord, error) {
	defer observe("educations_by_people", time.Now())
	out := make(map[int64][]model.EducationRecord, len(personIDs))
	if len(personIDs) == 0 {
		return out, nil
	}
	var rows []educationRow
	err := s.db.WithContext(ctx).
		Where("employee_id IN ?", personIDs).
		Order("employee_id ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail(ctx, "educations_by_people", err)
	}
	for _, r := range rows {
		out[r.EmployeeID] = append(out[r.EmployeeID], r.toModel())
	}
	return out, nil
}

// CurrentEmployees implements Store.
func (s *GormStore) CurrentEmployees(ctx context.Context, orgIDs []int64) ([]int64, error) {
	defer observe("current_employees", time.Now())
	ids := []int64{}
	if len(orgIDs) == 0 {
		return ids, nil
	}
	err := s.db.WithContext(ctx).
		Model(&experienceRow{}).
		Distinct("employee_id").
		Where("organization_id IN ? AND end_date IS NULL", orgIDs).
		Order("employee_id ASC").
		Pluck("employee_id", &ids).Error
	if err != nil {
		return nil, s.fail(ctx, "current_employees", err)
	}
	return ids, nil
}

// People implements Store.
func (s *GormStore) People(ctx context.Context, ids []int64) ([]model.Person, error) {
	defer observe("people", time.Now())
	out := []model.Person{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []employeeRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "people", err)
	}
	for _, r := range rows {
		out = append(out, model.Person{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// Organizations implements Store.
func (s *GormStore) Organizations(ctx context.Context) ([]model.Organization, error) {
	defer observe("organizations", time.Now())
	var rows []organizationRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "organizations", err)
	}
	out := make([]model.Organization, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Roles implements Store.
func (s *GormStore) Roles(ctx context.Context) ([]model.Role, error) {
	defer observe("roles", time.Now())
	var rows []roleRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "roles", err)
	}
	out := make([]model.Role, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// RoleIDsMatching implements Store.
func (s *GormStore) RoleIDsMatching(ctx context.Context, fragment string) ([]int64, error) {
	defer observe("role_ids_matching", time.Now())
	ids := []int64{}
	err := s.db.WithContext(ctx).
		Model(&roleRow{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(fragment)).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, s.fail(ctx, "role_ids_matching", err)
	}
	return ids, nil
}

// Schools implements Store.
func (s *GormStore) Schools(ctx context.Context) ([]model.School, error) {
	defer observe("schools", time.Now())
	var rows []schoolRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail(ctx, "schools", err)
	}
	out := make([]model.School, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.School{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// Close implements Store.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r organizationRow) toModel() model.Organization {
	return model.Organization{ID: r.ID, Name: r.Name, ExternalID: r.LinkedinOrgID}
}

func (r experienceRow) toModel() model.Stint {
	return model.Stint{
		ID:             r.ID,
		PersonID:       r.EmployeeID,
		OrganizationID: r.OrganizationID,
		RoleID:         r.RoleID,
		Start:          utcDate(r.StartDate),
		End:            utcDate(r.EndDate),
		DurationText:   deref(r.DurationText),
		Address:        deref(r.Address),
	}
}

func (r educationRow) toModel() model.EducationRecord {
	return model.EducationRecord{
		ID:       r.ID,
		PersonID: r.EmployeeID,
		SchoolID: r.SchoolID,
		Degree:   deref(r.Degree),
		Start:    utcDate(r.StartDate),
		End:      utcDate(r.EndDate),
	}
}

// utcDate drops the driver's location so dates compare as calendar days.
func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching fragment literally, the
// way MemoryStore does.
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(fragment))) + "%"
}
