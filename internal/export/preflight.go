package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFile is returned for uploads that are neither a workbook
// nor CSV.
var ErrUnsupportedFile = errors.New("unsupported upload file type")

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RequiredColumns are the headers an upload sheet must carry.
var RequiredColumns = []string{"emp_id", "emp_name", "department", "client", "duration_month", "payroll_month"}

// Preflight summarizes an upload file before it is sent.
type Preflight struct {
	MIME           string
	Sheet          string
	DataRows       int
	Headers        []string
	MissingColumns []string
}

// OK reports whether the file carries every required column.
func (p Preflight) OK() bool { return len(p.MissingColumns) == 0 }

// Check inspects an upload file's content. The backend remains the judge of
// row validity; this only catches the wrong file or a missing column.
func Check(data []byte) (Preflight, error) {
	mt := mimetype.Detect(data)
	p := Preflight{MIME: mt.String()}

	var rows [][]string
	switch {
	case mt.Is(xlsxMIME), mt.Is("application/zip"):
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return p, errors.Wrap(err, "open workbook")
		}
		defer f.Close()
		p.Sheet = f.GetSheetName(0)
		if p.Sheet == "" {
			return p, errors.New("workbook has no sheets")
		}
		if rows, err = f.GetRows(p.Sheet); err != nil {
			return p, errors.Wrap(err, "read sheet")
		}
	case strings.HasPrefix(mt.String(), "text/"):
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return p, errors.Wrap(err, "read csv")
			}
			rows = append(rows, rec)
		}
	default:
		return p, errors.Wrap(ErrUnsupportedFile, mt.String())
	}

	if len(rows) == 0 {
		p.MissingColumns = append([]string(nil), RequiredColumns...)
		return p, nil
	}
	seen := make(map[string]bool, len(rows[0]))
	for _, h := range rows[0] {
		norm := normalizeHeader(h)
		p.Headers = append(p.Headers, norm)
		seen[norm] = true
	}
	for _, c := range RequiredColumns {
		if !seen[c] {
			p.MissingColumns = append(p.MissingColumns, c)
		}
	}
	for _, row := range rows[1:] {
		if !blank(row) {
			p.DataRows++
		}
	}
	return p, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
