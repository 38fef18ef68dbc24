package contract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/period"
)

// FilterCriteria narrows an employee search. All fields are optional.
type FilterCriteria struct {
	EmpID          string `json:"emp_id,omitempty" validate:"omitempty,max=64"`
	AccountManager string `json:"account_manager,omitempty" validate:"omitempty,max=128"`
	Department     string `json:"department,omitempty" validate:"omitempty,max=128"`
	Client         string `json:"client,omitempty" validate:"omitempty,max=128"`
	StartMonth     string `json:"start_month,omitempty" validate:"omitempty,yyyymm"`
	EndMonth       string `json:"end_month,omitempty" validate:"omitempty,yyyymm"`
}

// Normalize trims every field and rewrites months into YYYY-MM, whatever
// display form they were typed in.
func (c FilterCriteria) Normalize() (FilterCriteria, error) {
	out := FilterCriteria{
		EmpID:          strings.TrimSpace(c.EmpID),
		AccountManager: strings.TrimSpace(c.AccountManager),
		Department:     strings.TrimSpace(c.Department),
		Client:         strings.TrimSpace(c.Client),
	}
	var err error
	if out.StartMonth, err = period.Normalize(c.StartMonth); err != nil {
		return FilterCriteria{}, &ValidationError{Fields: map[string]string{"StartMonth": err.Error()}}
	}
	if out.EndMonth, err = period.Normalize(c.EndMonth); err != nil {
		return FilterCriteria{}, &ValidationError{Fields: map[string]string{"EndMonth": err.Error()}}
	}
	if err := validate.Struct(out); err != nil {
		return FilterCriteria{}, validationError(err)
	}
	if out.StartMonth != "" && out.EndMonth != "" && out.EndMonth < out.StartMonth {
		return FilterCriteria{}, &ValidationError{Fields: map[string]string{"EndMonth": "must not be before start month"}}
	}
	return out, nil
}

// IsEmpty reports whether no filter is set.
func (c FilterCriteria) IsEmpty() bool {
	return c == FilterCriteria{}
}

// Query encodes the criteria plus a window for the search endpoint.
func (c FilterCriteria) Query(start, limit int) url.Values {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(limit))
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("emp_id", c.EmpID)
	set("account_manager", c.AccountManager)
	set("department", c.Department)
	set("client", c.Client)
	set("start_month", c.StartMonth)
	set("end_month", c.EndMonth)
	return q
}

// MonthRange is the start/end window used by the summary endpoints.
type MonthRange struct {
	Start string
	End   string
}

// Normalize rewrites both ends into YYYY-MM.
func (r MonthRange) Normalize() (MonthRange, error) {
	start, err := period.Normalize(r.Start)
	if err != nil {
		return MonthRange{}, errors.Wrap(err, "start month")
	}
	end, err := period.Normalize(r.End)
	if err != nil {
		return MonthRange{}, errors.Wrap(err, "end month")
	}
	if start != "" && end != "" && end < start {
		return MonthRange{}, errors.Errorf("end month %s is before start month %s", end, start)
	}
	return MonthRange{Start: start, End: end}, nil
}

// Query encodes the range, omitting empty ends.
func (r MonthRange) Query() url.Values {
	q := url.Values{}
	if r.Start != "" {
		q.Set("start_month", r.Start)
	}
	if r.End != "" {
		q.Set("end_month", r.End)
	}
	return q
}
