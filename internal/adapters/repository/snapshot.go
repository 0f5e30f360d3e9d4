package repository

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/internal/domain/types"
	"gopkg.in/yaml.v3"
)

// Snapshot is a complete set of records.
type Snapshot struct {
	People        []model.Person
	Organizations []model.Organization
	Roles         []model.Role
	Schools       []model.School
	Stints        []model.Stint
	Educations    []model.EducationRecord
}

// snapshotFile is the YAML layout of a snapshot. Dates are YYYY-MM-DD.
type snapshotFile struct {
	People []struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"people"`
	Organizations []struct {
		ID         int64   `yaml:"id"`
		Name       string  `yaml:"name"`
		ExternalID *string `yaml:"external_id"`
	} `yaml:"organizations"`
	Roles   []namedRow `yaml:"roles"`
	Schools []namedRow `yaml:"schools"`
	Stints  []struct {
		ID             int64  `yaml:"id"`
		PersonID       int64  `yaml:"person_id"`
		OrganizationID *int64 `yaml:"organization_id"`
		RoleID         *int64 `yaml:"role_id"`
		Start          string `yaml:"start"`
		End            string `yaml:"end"`
		Duration       string `yaml:"duration"`
		Address        string `yaml:"address"`
	} `yaml:"stints"`
	Educations []struct {
		ID       int64  `yaml:"id"`
		PersonID int64  `yaml:"person_id"`
		SchoolID *int64 `yaml:"school_id"`
		Degree   string `yaml:"degree"`
		Start    string `yaml:"start"`
		End      string `yaml:"end"`
	} `yaml:"educations"`
}

type namedRow struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadSnapshot reads a YAML snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSnapshot, err)
	}
	return ParseSnapshot(bytes.NewReader(b))
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	var f snapshotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrLoadSnapshot, err)
	}

	s := &Snapshot{}
	for _, p := range f.People {
		s.People = append(s.People, model.Person{ID: p.ID, Name: p.Name})
	}
	for _, o := range f.Organizations {
		s.Organizations = append(s.Organizations, model.Organization{ID: o.ID, Name: o.Name, ExternalID: o.ExternalID})
	}
	for _, r := range f.Roles {
		s.Roles = append(s.Roles, model.Role{ID: r.ID, Name: r.Name})
	}
	for _, sc := range f.Schools {
		s.Schools = append(s.Schools, model.School{ID: sc.ID, Name: sc.Name})
	}
	for _, st := range f.Stints {
		start, err := parseOptionalDate(st.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: stint %d start: %w", ErrLoadSnapshot, st.ID, err)
		}
		end, err := parseOptionalDate(st.End)
		if err != nil {
			return nil, fmt.Errorf("%w: stint %d end: %w", ErrLoadSnapshot, st.ID, err)
		}
		s.Stints = append(s.Stints, model.Stint{
			ID:             st.ID,
			PersonID:       st.PersonID,
			OrganizationID: st.OrganizationID,
			RoleID:         st.RoleID,
			Start:          start,
			End:            end,
			DurationText:   st.Duration,
			Address:        st.Address,
		})
	}
	for _, e := range f.Educations {
		start, err := parseOptionalDate(e.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: education %d start: %w", ErrLoadSnapshot, e.ID, err)
		}
		end, err := parseOptionalDate(e.End)
		if err != nil {
			return nil, fmt.Errorf("%w: education %d end: %w", ErrLoadSnapshot, e.ID, err)
		}
		s.Educations = append(s.Educations, model.EducationRecord{
			ID:       e.ID,
			PersonID: e.PersonID,
			SchoolID: e.SchoolID,
			Degree:   e.Degree,
			Start:    start,
			End:      end,
		})
	}
	return s, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := types.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
