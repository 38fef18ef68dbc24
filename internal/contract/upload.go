package contract

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// UploadResult is the success body of the upload endpoint.
type UploadResult struct {
	Message string `json:"message"`
}

// ErrorRow is one rejected row of an upload. Reason maps field names to the
// backend's explanation.
type ErrorRow struct {
	EmpID  string       `json:"emp_id"`
	Row    int          `json:"row,omitempty"`
	Reason FieldReasons `json:"reason"`
}

// FieldReasons accepts either a field -> reason object or a bare string,
// which is stored under the "row" key.
type FieldReasons map[string]string

func (f *FieldReasons) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*f = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FieldReasons{"row": s}
		return nil
	}
	var raw map[string]FlexString
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FieldReasons, len(raw))
	for k, v := range raw {
		out[k] = v.String()
	}
	*f = out
	return nil
}

// UploadErrorDetail is the structured failure body. Any subset of fields may
// be present.
type UploadErrorDetail struct {
	Message   string     `json:"message"`
	ErrorFile string     `json:"error_file"`
	ErrorRows []ErrorRow `json:"error_rows"`
}

// IsZero reports whether no structured field was present.
func (d UploadErrorDetail) IsZero() bool {
	return d.Message == "" && d.ErrorFile == "" && len(d.ErrorRows) == 0
}

// DecodeUploadError extracts {"detail": {...}} from a failure body. It
// returns false when the body carries no structured detail; a string
// detail is taken as the message.
func DecodeUploadError(b []byte) (UploadErrorDetail, bool) {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &env); err != nil || len(env.Detail) == 0 {
		return UploadErrorDetail{}, false
	}
	detail := bytes.TrimSpace(env.Detail)
	if len(detail) > 0 && detail[0] == '"' {
		var msg string
		if err := json.Unmarshal(detail, &msg); err != nil || msg == "" {
			return UploadErrorDetail{}, false
		}
		return UploadErrorDetail{Message: msg}, true
	}
	var d UploadErrorDetail
	if err := json.Unmarshal(detail, &d); err != nil || d.IsZero() {
		return UploadErrorDetail{}, false
	}
	return d, true
}
