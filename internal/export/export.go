// Package export writes summary tables and record pages to .xlsx and checks
// upload spreadsheets before they are sent.
package export

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/currency"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

const (
	treeSheet    = "Summary"
	recordsSheet = "Employees"
	moneyFormat  = `"₹"#,##0.##`
)

// WriteTree writes the visible rows of a summary table. Each row's outline
// level follows its tree level so spreadsheet grouping mirrors expansion.
// Amounts are written as numbers from the source nodes.
func WriteTree(w io.Writer, levels [rollup.MaxDepth]string, rows []rollup.DisplayRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), treeSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	money, header, err := styles(f)
	if err != nil {
		return err
	}

	head := []any{"Name", "Level", "Head Count"}
	for _, code := range rollup.ShiftCodes {
		head = append(head, "Shift "+string(code))
	}
	head = append(head, "Total Allowance", "Note")
	if err := f.SetSheetRow(treeSheet, "A1", &head); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := f.SetRowStyle(treeSheet, 1, 1, header); err != nil {
		return errors.Wrap(err, "style header")
	}

	for i, r := range rows {
		rowNum := i + 2
		line := []any{r.Name, levels[r.Level], r.HeadCount}
		for _, code := range rollup.ShiftCodes {
			line = append(line, amount(r, code))
		}
		line = append(line, total(r), r.Error)
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(treeSheet, cell, &line); err != nil {
			return errors.Wrapf(err, "write row %d", rowNum)
		}
		if r.Level > rollup.LevelTop {
			if err := f.SetRowOutlineLevel(treeSheet, rowNum, uint8(r.Level)); err != nil {
				return errors.Wrapf(err, "outline row %d", rowNum)
			}
		}
	}
	if len(rows) > 0 {
		first, _ := excelize.CoordinatesToCellName(4, 2)
		last, _ := excelize.CoordinatesToCellName(8, len(rows)+1)
		if err := f.SetCellStyle(treeSheet, first, last, money); err != nil {
			return errors.Wrap(err, "style amounts")
		}
	}
	_ = f.SetColWidth(treeSheet, "A", "A", 32)
	_ = f.SetColWidth(treeSheet, "B", "I", 16)

	return write(f, w)
}

// WriteRecords writes a page of employee records, with the shift summary
// row last when present.
func WriteRecords(w io.Writer, rows []contract.EmployeeRecord, summary *contract.ShiftSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	money, header, err := styles(f)
	if err != nil {
		return err
	}

	head := []any{"Emp ID", "Emp Name", "Department", "Shift Details", "Account Manager",
		"Client", "Duration Month", "Payroll Month", "Total Allowances"}
	if err := f.SetSheetRow(recordsSheet, "A1", &head); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := f.SetRowStyle(recordsSheet, 1, 1, header); err != nil {
		return errors.Wrap(err, "style header")
	}

	for i, r := range rows {
		var totalCell any = ""
		if r.Employee.TotalAllowances != nil {
			totalCell = r.Employee.TotalAllowances.InexactFloat64()
		}
		line := []any{r.EmpID, r.EmpName, r.Department, r.ShiftDetails, r.AccountManager,
			r.Client, r.DurationMonth, r.PayrollMonth, totalCell}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(recordsSheet, cell, &line); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	last := len(rows) + 1
	if summary != nil {
		last++
		line := []any{"", "Shift summary", "", shiftSummaryText(summary), "", "", "", "", summary.TotalAllowances.InexactFloat64()}
		cell, _ := excelize.CoordinatesToCellName(1, last)
		if err := f.SetSheetRow(recordsSheet, cell, &line); err != nil {
			return errors.Wrap(err, "write summary row")
		}
	}
	if last > 1 {
		first, _ := excelize.CoordinatesToCellName(9, 2)
		end, _ := excelize.CoordinatesToCellName(9, last)
		if err := f.SetCellStyle(recordsSheet, first, end, money); err != nil {
			return errors.Wrap(err, "style amounts")
		}
	}
	_ = f.SetColWidth(recordsSheet, "A", "I", 18)

	return write(f, w)
}

func styles(f *excelize.File) (money, header int, err error) {
	numFmt := moneyFormat
	money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return 0, 0, errors.Wrap(err, "money style")
	}
	header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, 0, errors.Wrap(err, "header style")
	}
	return money, header, nil
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func amount(r rollup.DisplayRow, code rollup.ShiftCode) float64 {
	if r.Node != nil {
		return r.Node.Shifts.Get(code).InexactFloat64()
	}
	return currency.ParseOrZero(r.Shifts[code]).InexactFloat64()
}

func total(r rollup.DisplayRow) float64 {
	if r.Node != nil {
		return r.Node.Total.InexactFloat64()
	}
	return currency.ParseOrZero(r.Total).InexactFloat64()
}

func shiftSummaryText(s *contract.ShiftSummary) string {
	t := s.Totals()
	out := ""
	for i, code := range rollup.ShiftCodes {
		if i > 0 {
			out += ", "
		}
		out += string(code) + ":" + currency.Format(t.Get(code))
	}
	return out
}
