// Package contract holds the wire shapes exchanged with the allowance API
// and the adapters that map them onto the canonical rollup tree.
package contract

import (
	"bytes"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

var jsonNull = []byte("null")

// FlexString decodes a JSON string or number into its text form. The backend
// sends shift counts both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

func (f FlexString) String() string { return string(f) }

// ShiftAmounts is a shift-code keyed money map. Keys are accepted as "A",
// "shift_a", "Shift A" or "prime" and stored as rollup shift codes.
type ShiftAmounts map[rollup.ShiftCode]decimal.Decimal

func (s *ShiftAmounts) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*s = nil
		return nil
	}
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "decode shift amounts")
	}
	out := make(ShiftAmounts, len(raw))
	for k, v := range raw {
		code, ok := ParseShiftCode(k)
		if !ok {
			continue
		}
		out[code] = out[code].Add(v)
	}
	*s = out
	return nil
}

// Totals converts the map into rollup shift totals.
func (s ShiftAmounts) Totals() rollup.ShiftTotals {
	out := make(rollup.ShiftTotals, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ParseShiftCode maps the spellings used across endpoints onto a shift code.
func ParseShiftCode(s string) (rollup.ShiftCode, bool) {
	k := strings.ToUpper(strings.TrimSpace(s))
	k = strings.TrimPrefix(k, "SHIFT")
	k = strings.TrimLeft(k, "_- ")
	switch k {
	case "A":
		return rollup.ShiftA, true
	case "B":
		return rollup.ShiftB, true
	case "C":
		return rollup.ShiftC, true
	case "PRIME", "P":
		return rollup.ShiftPrime, true
	}
	return "", false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("yyyymm", func(fl validator.FieldLevel) bool {
		return period.IsWire(fl.Field().String())
	})
	return v
}

// ValidationError lists field-level problems in a form the UI can annotate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, reason := range e.Fields {
		parts = append(parts, f+": "+reason)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describeTag(fe)
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "yyyymm":
		return "must be a month such as 2024-01 or Jan'24"
	case "number", "numeric":
		return "must be a whole number"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "required":
		return "is required"
	default:
		return "failed " + fe.Tag()
	}
}
