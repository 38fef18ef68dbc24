package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/currency"
	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

var recordHeaders = []string{"EMP ID", "NAME", "DEPARTMENT", "CLIENT", "MANAGER", "DURATION", "PAYROLL", "SHIFTS", "TOTAL"}

// RenderRecords draws one page of employee records. cursor is the selected
// row, -1 for none.
func RenderRecords(rows []contract.EmployeeRecord, cursor int) string {
	if len(rows) == 0 {
		return Dim("No records.") + "\n"
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			StyleBlue.Render(r.EmpID),
			r.EmpName,
			r.Department,
			r.Client,
			r.AccountManager,
			r.DurationMonth,
			r.PayrollMonth,
			Truncate(r.ShiftDetails, 28),
			r.TotalAllowances,
		})
	}
	return Table{Headers: recordHeaders, Rows: out, Right: map[int]bool{8: true}, Cursor: cursor}.Render()
}

// RenderShiftSummary renders the search summary line, or "" for nil.
func RenderShiftSummary(s *contract.ShiftSummary) string {
	if s == nil {
		return ""
	}
	totals := s.Totals()
	parts := make([]string, 0, len(rollup.ShiftCodes)+2)
	for _, code := range rollup.ShiftCodes {
		parts = append(parts, Dim(string(code))+" "+currency.Format(totals.Get(code)))
	}
	parts = append(parts, Dim("Total")+" "+Bold(currency.Format(s.TotalAllowances)))
	if s.HeadCount > 0 {
		parts = append(parts, Dim(fmt.Sprintf("(%d employees)", s.HeadCount)))
	}
	return StyleHeader.Render("Shift summary") + "  " + strings.Join(parts, "  ")
}

// RenderPager renders the page position line for a browser snapshot.
func RenderPager(s browser.Snapshot) string {
	if s.TotalPages == 0 {
		return Dim(fmt.Sprintf("0 records · %d per page", s.PageSize))
	}
	return Dim(fmt.Sprintf("Page %d of %d · %d records · %d per page",
		s.Page, s.TotalPages, s.TotalRecords, s.PageSize))
}

// RenderUploadErrors renders the upload failure dialog body: the message,
// the error file link and one line per rejected field.
func RenderUploadErrors(message, errorFile string, rows []contract.ErrorRow) string {
	var b strings.Builder
	if message != "" {
		b.WriteString(StyleRed.Render(message) + "\n")
	}
	if errorFile != "" {
		b.WriteString(Dim("Error file: ") + StyleBlue.Render(errorFile) + "\n")
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		var lines [][]string
		for _, r := range rows {
			fields := make([]string, 0, len(r.Reason))
			for f := range r.Reason {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			row := ""
			if r.Row > 0 {
				row = itoa(r.Row)
			}
			if len(fields) == 0 {
				lines = append(lines, []string{row, r.EmpID, "", ""})
			}
			for _, f := range fields {
				lines = append(lines, []string{row, r.EmpID, f, r.Reason[f]})
			}
		}
		b.WriteString(RenderTable([]string{"ROW", "EMP ID", "FIELD", "REASON"}, lines))
	}
	return b.String()
}

// RenderEmployeeDetail renders the detail record with its per-month shift
// counts. Months with an unsaved edit show the staged counts and a * mark.
func RenderEmployeeDetail(e contract.EmployeeObject, cursor int, staged map[string]contract.ShiftEdit) string {
	// staged is keyed by wire month (YYYY-MM).
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			value = Dim("--")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(fmt.Sprintf("%-16s", label)), value))
	}
	field("Employee", Bold(e.EmpID)+" "+e.EmpName)
	field("Department", e.Department)
	field("Client", e.Client)
	field("Account Manager", e.AccountManager)
	field("Duration", period.Display(e.DurationMonth))
	field("Payroll", period.Display(e.PayrollMonth))
	field("Shifts", e.ShiftDetails.String())
	if e.TotalAllowances != nil {
		field("Total", currency.Format(*e.TotalAllowances))
	}

	if len(e.Months) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	rows := make([][]string, 0, len(e.Months))
	for _, m := range e.Months {
		counts := m.Shifts()
		mark := ""
		key := m.DurationMonth
		if n, err := period.Normalize(key); err == nil {
			key = n
		}
		if edit, ok := staged[key]; ok {
			counts, mark = edit, StyleYellow.Render("*")
		}
		total := ""
		if m.TotalAllowance != nil {
			total = currency.Format(*m.TotalAllowance)
		}
		rows = append(rows, []string{
			period.Display(m.DurationMonth) + mark,
			counts.ShiftA, counts.ShiftB, counts.ShiftC, counts.Prime,
			total,
		})
	}
	b.WriteString(Table{
		Headers: []string{"MONTH", "A", "B", "C", "PRIME", "ALLOWANCE"},
		Rows:    rows,
		Right:   map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
		Cursor:  cursor,
	}.Render())
	return b.String()
}
