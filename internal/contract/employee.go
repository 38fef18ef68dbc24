package contract

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/shiftdash/internal/currency"
	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// RecordTypeSummary is the explicit discriminator for shift summary rows.
// Rows without emp_id are still treated as summaries when it is absent.
const RecordTypeSummary = "summary"

// ShiftDetails is the free-form shift description on an employee object: the
// backend sends either a plain string or a shift -> days mapping.
type ShiftDetails struct {
	Text   string
	Counts map[string]string
}

func (s *ShiftDetails) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = ShiftDetails{}
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &s.Text)
	}
	var raw map[string]FlexString
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "decode shift details")
	}
	s.Counts = make(map[string]string, len(raw))
	for k, v := range raw {
		s.Counts[k] = v.String()
	}
	return nil
}

func (s ShiftDetails) MarshalJSON() ([]byte, error) {
	if len(s.Counts) > 0 {
		return json.Marshal(s.Counts)
	}
	return json.Marshal(s.Text)
}

// String renders structured details as "A:3, B:0" in shift order, with any
// unrecognized keys after.
func (s ShiftDetails) String() string {
	if len(s.Counts) == 0 {
		return s.Text
	}
	parts := make([]string, 0, len(s.Counts))
	used := make(map[string]bool, len(s.Counts))
	for _, code := range rollup.ShiftCodes {
		for k, v := range s.Counts {
			if c, ok := ParseShiftCode(k); ok && c == code && !used[k] {
				parts = append(parts, string(code)+":"+v)
				used[k] = true
			}
		}
	}
	var rest []string
	for k, v := range s.Counts {
		if !used[k] {
			rest = append(rest, k+":"+v)
		}
	}
	sort.Strings(rest)
	return strings.Join(append(parts, rest...), ", ")
}

// MonthDetail is one per-month entry of a detail response. Raw keeps the
// full backend object so fields unknown to this client survive edits.
type MonthDetail struct {
	DurationMonth  string           `json:"duration_month"`
	PayrollMonth   string           `json:"payroll_month"`
	ShiftA         FlexString       `json:"shift_a"`
	ShiftB         FlexString       `json:"shift_b"`
	ShiftC         FlexString       `json:"shift_c"`
	Prime          FlexString       `json:"prime"`
	TotalAllowance *decimal.Decimal `json:"total_allowance,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (m *MonthDetail) UnmarshalJSON(b []byte) error {
	type plain MonthDetail
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "decode month detail")
	}
	if p.DurationMonth == "" {
		var alt struct {
			Month string `json:"month"`
		}
		_ = json.Unmarshal(b, &alt)
		p.DurationMonth = alt.Month
	}
	*m = MonthDetail(p)
	m.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (m MonthDetail) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain MonthDetail
	return json.Marshal(plain(m))
}

// Shifts returns the month's counts as an edit payload.
func (m MonthDetail) Shifts() ShiftEdit {
	return ShiftEdit{
		ShiftA: m.ShiftA.String(),
		ShiftB: m.ShiftB.String(),
		ShiftC: m.ShiftC.String(),
		Prime:  m.Prime.String(),
	}
}

// EmployeeObject is the backend's employee shape shared by the search and
// detail endpoints.
type EmployeeObject struct {
	EmpID           string           `json:"emp_id"`
	EmpName         string           `json:"emp_name"`
	Department      string           `json:"department"`
	ShiftDetails    ShiftDetails     `json:"shift_details"`
	AccountManager  string           `json:"account_manager"`
	Client          string           `json:"client"`
	DurationMonth   string           `json:"duration_month"`
	PayrollMonth    string           `json:"payroll_month"`
	TotalAllowances *decimal.Decimal `json:"total_allowances,omitempty"`
	Months          []MonthDetail    `json:"months,omitempty"`
	RecordType      string           `json:"record_type,omitempty"`
}

// ShiftSummary is the sentinel aggregate carried inside a search result.
type ShiftSummary struct {
	ShiftA          decimal.Decimal `json:"shift_a"`
	ShiftB          decimal.Decimal `json:"shift_b"`
	ShiftC          decimal.Decimal `json:"shift_c"`
	Prime           decimal.Decimal `json:"prime"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	HeadCount       int             `json:"head_count"`
}

// Totals returns the summary as rollup shift totals.
func (s ShiftSummary) Totals() rollup.ShiftTotals {
	return rollup.ShiftTotals{
		rollup.ShiftA:     s.ShiftA,
		rollup.ShiftB:     s.ShiftB,
		rollup.ShiftC:     s.ShiftC,
		rollup.ShiftPrime: s.Prime,
	}
}

// EmployeeRecord is one row of the record browser.
type EmployeeRecord struct {
	ID              string
	EmpID           string
	EmpName         string
	Department      string
	ShiftDetails    string
	AccountManager  string
	Client          string
	DurationMonth   string
	PayrollMonth    string
	TotalAllowances string

	Employee EmployeeObject
	// FullRecord is the employee object exactly as the backend sent it.
	FullRecord json.RawMessage
}

// RecordID builds the composite row identity. The position disambiguates
// duplicate natural keys within one page.
func RecordID(empID, durationMonth, payrollMonth string, position int) string {
	return strings.Join([]string{empID, durationMonth, payrollMonth, strconv.Itoa(position)}, "|")
}

// NewEmployeeRecord maps a decoded employee onto a browser row.
func NewEmployeeRecord(e EmployeeObject, raw json.RawMessage, position int) EmployeeRecord {
	total := ""
	if e.TotalAllowances != nil {
		total = currency.Format(*e.TotalAllowances)
	}
	return EmployeeRecord{
		ID:              RecordID(e.EmpID, e.DurationMonth, e.PayrollMonth, position),
		EmpID:           e.EmpID,
		EmpName:         e.EmpName,
		Department:      e.Department,
		ShiftDetails:    e.ShiftDetails.String(),
		AccountManager:  e.AccountManager,
		Client:          e.Client,
		DurationMonth:   period.Display(e.DurationMonth),
		PayrollMonth:    period.Display(e.PayrollMonth),
		TotalAllowances: total,
		Employee:        e,
		FullRecord:      raw,
	}
}

// SearchResponse is the decoded search payload with the sentinel row split
// out of the data rows.
type SearchResponse struct {
	TotalRecords int
	Records      []EmployeeRecord
	Summary      *ShiftSummary
}

// DecodeSearchResponse decodes a search payload. It accepts total_records or
// total for the count and data or employees for the rows.
func DecodeSearchResponse(b []byte) (SearchResponse, error) {
	var wire struct {
		TotalRecords *int              `json:"total_records"`
		Total        *int              `json:"total"`
		Data         []json.RawMessage `json:"data"`
		Employees    []json.RawMessage `json:"employees"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return SearchResponse{}, errors.Wrap(err, "decode search response")
	}
	items := wire.Data
	if items == nil {
		items = wire.Employees
	}

	var out SearchResponse
	for _, item := range items {
		if isSummaryRow(item) {
			var s ShiftSummary
			if err := json.Unmarshal(item, &s); err != nil {
				return SearchResponse{}, errors.Wrap(err, "decode shift summary")
			}
			out.Summary = &s
			continue
		}
		var e EmployeeObject
		if err := json.Unmarshal(item, &e); err != nil {
			return SearchResponse{}, errors.Wrap(err, "decode employee")
		}
		out.Records = append(out.Records, NewEmployeeRecord(e, item, len(out.Records)))
	}

	switch {
	case wire.TotalRecords != nil:
		out.TotalRecords = *wire.TotalRecords
	case wire.Total != nil:
		out.TotalRecords = *wire.Total
	default:
		out.TotalRecords = len(out.Records)
	}
	return out, nil
}

func isSummaryRow(item json.RawMessage) bool {
	var probe struct {
		EmpID      *FlexString `json:"emp_id"`
		RecordType string      `json:"record_type"`
	}
	if err := json.Unmarshal(item, &probe); err != nil {
		return false
	}
	if probe.RecordType != "" {
		return strings.EqualFold(probe.RecordType, RecordTypeSummary)
	}
	return probe.EmpID == nil || strings.TrimSpace(probe.EmpID.String()) == ""
}

// DecodeEmployee decodes a detail response.
func DecodeEmployee(b []byte) (EmployeeObject, error) {
	var e EmployeeObject
	if err := json.Unmarshal(b, &e); err != nil {
		return EmployeeObject{}, errors.Wrap(err, "decode employee detail")
	}
	return e, nil
}
