package model

// Directory holds read-only lookups for one request. It is built once and
// shared by every computation in that request.
type Directory struct {
	Organizations map[int64]Organization
	Roles         map[int64]Role
	Schools       map[int64]School
	People        map[int64]Person
}

// NewDirectory returns an empty directory ready to be filled.
func NewDirectory() *Directory {
	return &Directory{
		Organizations: make(map[int64]Organization),
		Roles:         make(map[int64]Role),
		Schools:       make(map[int64]School),
		People:        make(map[int64]Person),
	}
}

// OrganizationName resolves an organization id to its name.
func (d *Directory) OrganizationName(id *int64) string {
	if d == nil || id == nil {
		return UnknownName
	}
	if o, ok := d.Organizations[*id]; ok {
		return o.Name
	}
	return UnknownName
}

// RoleName resolves a role id. An absent role yields the empty string so
// callers can distinguish "no role recorded" from "unknown role".
func (d *Directory) RoleName(id *int64) string {
	if id == nil {
		return ""
	}
	if d != nil {
		if r, ok := d.Roles[*id]; ok {
			return r.Name
		}
	}
	return UnknownName
}

// SchoolName resolves a school id to its name.
func (d *Directory) SchoolName(id *int64) string {
	if d == nil || id == nil {
		return UnknownName
	}
	if s, ok := d.Schools[*id]; ok {
		return s.Name
	}
	return UnknownName
}

// PersonName resolves a person id to a display name.
func (d *Directory) PersonName(id int64) string {
	if d != nil {
		if p, ok := d.People[id]; ok {
			return p.Name
		}
	}
	return UnknownName
}
