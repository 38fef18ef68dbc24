package contract

import (
	"bytes"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/wI2L/jsondiff"

	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// ShiftEdit is the update body: string-encoded day counts per shift.
type ShiftEdit struct {
	ShiftA string `json:"shift_a" validate:"omitempty,number"`
	ShiftB string `json:"shift_b" validate:"omitempty,number"`
	ShiftC string `json:"shift_c" validate:"omitempty,number"`
	Prime  string `json:"prime" validate:"omitempty,number"`
}

// Validate trims the counts and checks each is a non-negative integer.
func (e ShiftEdit) Validate() (ShiftEdit, error) {
	out := ShiftEdit{
		ShiftA: strings.TrimSpace(e.ShiftA),
		ShiftB: strings.TrimSpace(e.ShiftB),
		ShiftC: strings.TrimSpace(e.ShiftC),
		Prime:  strings.TrimSpace(e.Prime),
	}
	if err := validate.Struct(out); err != nil {
		return ShiftEdit{}, validationError(err)
	}
	return out, nil
}

// ChangedFields returns the subset of edited that differs from original,
// keyed by wire field name. An empty map means nothing to send.
func ChangedFields(original, edited ShiftEdit) (map[string]string, error) {
	patch, err := jsondiff.Compare(original, edited)
	if err != nil {
		return nil, errors.Wrap(err, "diff shift edit")
	}
	values := map[string]string{
		"shift_a": edited.ShiftA,
		"shift_b": edited.ShiftB,
		"shift_c": edited.ShiftC,
		"prime":   edited.Prime,
	}
	out := make(map[string]string, len(patch))
	for _, op := range patch {
		field := strings.TrimPrefix(op.Path, "/")
		if v, ok := values[field]; ok {
			out[field] = v
		}
	}
	return out, nil
}

// ShiftDays is one authoritative post-update value.
type ShiftDays struct {
	Shift string     `json:"shift"`
	Days  FlexString `json:"days"`
}

// DecodeUpdateResponse accepts a bare array or an {"updated_shifts": [...]}
// envelope.
func DecodeUpdateResponse(b []byte) ([]ShiftDays, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var out []ShiftDays
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, errors.Wrap(err, "decode update response")
		}
		return out, nil
	}
	var env struct {
		UpdatedShifts []ShiftDays `json:"updated_shifts"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, errors.Wrap(err, "decode update response")
	}
	return env.UpdatedShifts, nil
}

// wireField maps a shift code spelling onto the month detail field name.
func wireField(shift string) (string, bool) {
	code, ok := ParseShiftCode(shift)
	if !ok {
		return "", false
	}
	switch code {
	case rollup.ShiftA:
		return "shift_a", true
	case rollup.ShiftB:
		return "shift_b", true
	case rollup.ShiftC:
		return "shift_c", true
	default:
		return "prime", true
	}
}

// MergeShiftDays applies server values onto a month detail with a JSON merge
// patch over its raw object, so fields this client does not model survive.
// Unknown shift names are ignored.
func MergeShiftDays(m MonthDetail, days []ShiftDays) (MonthDetail, error) {
	patch := make(map[string]string, len(days))
	for _, d := range days {
		if field, ok := wireField(d.Shift); ok {
			patch[field] = d.Days.String()
		}
	}
	if len(patch) == 0 {
		return m, nil
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return MonthDetail{}, errors.Wrap(err, "encode month detail")
	}
	patchDoc, err := json.Marshal(patch)
	if err != nil {
		return MonthDetail{}, errors.Wrap(err, "encode merge patch")
	}
	merged, err := jsonpatch.MergePatch(doc, patchDoc)
	if err != nil {
		return MonthDetail{}, errors.Wrap(err, "merge shift days")
	}
	var out MonthDetail
	if err := json.Unmarshal(merged, &out); err != nil {
		return MonthDetail{}, errors.Wrap(err, "decode merged month")
	}
	return out, nil
}
