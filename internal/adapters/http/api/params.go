package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/types"
)

// params reads typed values from a query string and keeps the first error.
type params struct {
	q   url.Values
	err error
}

func newParams(q url.Values) *params { return &params{q: q} }

func (p *params) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: "+format, append([]any{ErrBadRequest}, args...)...)
	}
}

func (p *params) str(name string) string {
	return strings.TrimSpace(p.q.Get(name))
}

func (p *params) requiredInt64(name string) int64 {
	v := p.str(name)
	if v == "" {
		p.fail("%s is required", name)
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		p.fail("%s must be a positive integer", name)
		return 0
	}
	return n
}

func (p *params) optionalInt64(name string) *int64 {
	if p.str(name) == "" {
		return nil
	}
	n := p.requiredInt64(name)
	return &n
}

// positiveInt returns 0 when the parameter is absent.
func (p *params) positiveInt(name string) int {
	v := p.str(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		p.fail("%s must be a positive integer", name)
		return 0
	}
	return n
}

func (p *params) date(name string) *time.Time {
	v := p.str(name)
	if v == "" {
		return nil
	}
	t, err := types.ParseDate(v)
	if err != nil {
		p.fail("%s must be a date in YYYY-MM-DD format", name)
		return nil
	}
	return &t
}

// int64List accepts repeated and comma-separated values.
func (p *params) int64List(name string) []int64 {
	var out []int64
	for _, raw := range p.q[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseInt(part, 10, 64)
			if err != nil || n <= 0 {
				p.fail("%s must contain positive integers", name)
				return nil
			}
			out = append(out, n)
		}
	}
	return out
}

// list returns the non-blank values of a repeated parameter.
func (p *params) list(name string) []string {
	var out []string
	for _, v := range p.q[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p *params) filters() connection.Filters {
	f := connection.Filters{
		PastCompanies: p.list("past_companies"),
		PastRoles:     p.list("past_roles"),
		Colleges:      p.list("colleges"),
		Departments:   p.list("departments"),
	}
	for _, v := range p.list("tenure_options") {
		opt, err := connection.ParseTenureOption(v)
		if err != nil {
			p.fail("%v", err)
			continue
		}
		f.TenureOptions = append(f.TenureOptions, opt)
	}
	for _, v := range p.list("batch_options") {
		opt, err := connection.ParseBatchOption(v)
		if err != nil {
			p.fail("%v", err)
			continue
		}
		f.BatchOptions = append(f.BatchOptions, opt)
	}
	return f
}
