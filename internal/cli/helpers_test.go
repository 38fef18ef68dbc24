package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/config"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/logging"
	"github.com/alexanderramin/shiftdash/internal/rollup"
	"github.com/alexanderramin/shiftdash/internal/session"
	"github.com/alexanderramin/shiftdash/internal/testutil"
)

// fakeAPI is an in-memory backend. Search filters employees by ID prefix
// and pages them; updates are applied to the stored records.
type fakeAPI struct {
	mu        sync.Mutex
	employees []contract.EmployeeObject
	trees     map[contract.SummaryKind]*rollup.Tree

	summaryErr error
	uploadErr  error
	updateErr  error

	searches []contract.FilterCriteria
	updates  []map[string]string
	uploads  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		trees: map[contract.SummaryKind]*rollup.Tree{
			contract.SummaryManagers: testutil.NewTestManagerTree(),
		},
	}
}

func (f *fakeAPI) Search(_ context.Context, c contract.FilterCriteria, start, limit int) (contract.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, c)

	var matched []contract.EmployeeObject
	for _, e := range f.employees {
		if strings.HasPrefix(strings.ToLower(e.EmpID), strings.ToLower(c.EmpID)) {
			matched = append(matched, e)
		}
	}
	resp := contract.SearchResponse{
		TotalRecords: len(matched),
		Summary: &contract.ShiftSummary{
			ShiftA:          decimal.NewFromInt(int64(500 * len(matched))),
			TotalAllowances: decimal.NewFromInt(int64(500 * len(matched))),
			HeadCount:       len(matched),
		},
	}
	for i := start; i < len(matched) && i < start+limit; i++ {
		resp.Records = append(resp.Records, contract.NewEmployeeRecord(matched[i], nil, i-start))
	}
	return resp, nil
}

func (f *fakeAPI) Employee(_ context.Context, empID, _, _ string) (contract.EmployeeObject, json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if e.EmpID == empID {
			e.Months = append([]contract.MonthDetail(nil), e.Months...)
			raw, err := json.Marshal(e)
			return e, raw, err
		}
	}
	return contract.EmployeeObject{}, nil, &api.StatusError{Endpoint: "employee", StatusCode: 404}
}

func (f *fakeAPI) UpdateShifts(_ context.Context, empID, _, _ string, fields map[string]string) ([]contract.ShiftDays, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	var days []contract.ShiftDays
	for field, v := range fields {
		days = append(days, contract.ShiftDays{Shift: field, Days: contract.FlexString(v)})
	}
	return days, nil
}

func (f *fakeAPI) Upload(_ context.Context, name string, r io.Reader) (contract.UploadResult, error) {
	_, _ = io.Copy(io.Discard, r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	if f.uploadErr != nil {
		return contract.UploadResult{}, f.uploadErr
	}
	return contract.UploadResult{Message: "Uploaded " + name}, nil
}

func (f *fakeAPI) Summary(_ context.Context, kind contract.SummaryKind, _ contract.MonthRange) (*rollup.Tree, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, false, f.summaryErr
	}
	t, ok := f.trees[kind]
	if !ok {
		return rollup.NewTree(nil), false, nil
	}
	return t, true, nil
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeAPI) updateCalls() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.updates...)
}

func (f *fakeAPI) uploadCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

// seedEmployees stores n employees E01..En, each with one January month.
func (f *fakeAPI) seedEmployees(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= n; i++ {
		f.employees = append(f.employees, testutil.NewTestEmployee(fmt.Sprintf("E%02d", i),
			testutil.WithTotal(500),
			testutil.WithMonthDetail("2024-01", "3", "0", "0", "1"),
		))
	}
}

// testApp wires an App around a fake backend and an in-memory session DB.
func testApp(t *testing.T) (*App, *fakeAPI) {
	t.Helper()
	database := testutil.NewTestDB(t)
	cfg, err := config.FromMap(map[string]string{
		"SHIFTDASH_DB":         ":memory:",
		"SHIFTDASH_EXPORT_DIR": t.TempDir(),
	})
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	fake := newFakeAPI()
	return &App{
		API:      fake,
		Sessions: session.NewStore(database, clock),
		Config:   cfg,
		Log:      logging.Discard(),
		Clock:    clock,
		Metrics:  prometheus.NewRegistry(),
	}, fake
}

// testState builds the dashboard state for app and closes it with the test.
func testState(t *testing.T, app *App) *SharedState {
	t.Helper()
	state := newSharedState(app, contract.MonthRange{})
	t.Cleanup(state.Close)
	return state
}

// executeCmd runs a command line against app and captures its output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes lipgloss styling so assertions see plain text.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
