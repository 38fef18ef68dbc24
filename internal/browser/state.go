package browser

import (
	"slices"

	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

// Status is the query lifecycle state of a browser.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrClosed is returned by operations on a closed browser.
	ErrClosed = errors.New("browser closed")

	// ErrSuperseded is returned when a later request replaced this one
	// before its response could be applied.
	ErrSuperseded = errors.New("request superseded")

	// ErrPageSize is returned for a page size the table does not offer.
	ErrPageSize = errors.New("unsupported page size")

	// ErrUnknownMonth is returned when an edit names a month the detail
	// record does not have.
	ErrUnknownMonth = errors.New("month not found on record")
)

// Snapshot is a copy of the browser state for rendering.
type Snapshot struct {
	// Version increases with every published change.
	Version uint64

	Status       Status
	Criteria     contract.FilterCriteria
	Page         int
	PageSize     int
	TotalPages   int
	TotalRecords int
	Rows         []contract.EmployeeRecord
	Summary      *contract.ShiftSummary
	Error        string

	// Upload outcome.
	Uploading      bool
	Success        string
	ErrorFileLink  string
	ErrorRows      []contract.ErrorRow
	ErrorModalOpen bool

	// NeedsRefresh is set after a saved edit so the list can refetch.
	NeedsRefresh bool
}

func (s Snapshot) clone() Snapshot {
	s.Rows = slices.Clone(s.Rows)
	s.ErrorRows = slices.Clone(s.ErrorRows)
	if s.Summary != nil {
		sum := *s.Summary
		s.Summary = &sum
	}
	return s
}

const (
	msgNotAuthenticated = "You are not signed in. Run `shiftdash login` and try again."
	msgTimeout          = "The server took too long to respond. Please try again."
	msgNetwork          = "Network error: could not reach the server. Please try again."
	msgUploadFailed     = "Network error: the file could not be uploaded. Please try again."
	msgUploaded         = "File uploaded successfully."
)

// errorMessage turns an operation error into the inline text shown next to
// the control that issued it.
func errorMessage(err error) string {
	var (
		se   *api.StatusError
		verr *contract.ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrNotAuthenticated):
		return msgNotAuthenticated
	case errors.Is(err, api.ErrTimeout):
		return msgTimeout
	case errors.Is(err, api.ErrUnavailable):
		return msgNetwork
	case errors.As(err, &se):
		return se.Message()
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, api.ErrDecode):
		return "The server sent a response this client could not read."
	default:
		return err.Error()
	}
}
