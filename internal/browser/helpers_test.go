package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/alexanderramin/shiftdash/internal/contract"
)

type searchCall struct {
	criteria contract.FilterCriteria
	start    int
	limit    int
}

type updateCall struct {
	empID, payroll, duration string
	fields                   map[string]string
}

type fakeBackend struct {
	mu       sync.Mutex
	searches []searchCall
	updates  []updateCall
	uploads  []string

	searchFn func(ctx context.Context, c searchCall) (contract.SearchResponse, error)
	detailFn func(ctx context.Context, empID, duration, payroll string) (contract.EmployeeObject, json.RawMessage, error)
	updateFn func(ctx context.Context, c updateCall) ([]contract.ShiftDays, error)
	uploadFn func(ctx context.Context, name string, data []byte) (contract.UploadResult, error)
}

func (f *fakeBackend) Search(ctx context.Context, criteria contract.FilterCriteria, start, limit int) (contract.SearchResponse, error) {
	c := searchCall{criteria: criteria, start: start, limit: limit}
	f.mu.Lock()
	f.searches = append(f.searches, c)
	fn := f.searchFn
	f.mu.Unlock()
	if fn == nil {
		return pageOf(23, start, limit), nil
	}
	return fn(ctx, c)
}

func (f *fakeBackend) Employee(ctx context.Context, empID, duration, payroll string) (contract.EmployeeObject, json.RawMessage, error) {
	return f.detailFn(ctx, empID, duration, payroll)
}

func (f *fakeBackend) UpdateShifts(ctx context.Context, empID, payroll, duration string, fields map[string]string) ([]contract.ShiftDays, error) {
	c := updateCall{empID: empID, payroll: payroll, duration: duration, fields: fields}
	f.mu.Lock()
	f.updates = append(f.updates, c)
	f.mu.Unlock()
	return f.updateFn(ctx, c)
}

func (f *fakeBackend) Upload(ctx context.Context, name string, r io.Reader) (contract.UploadResult, error) {
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	f.uploads = append(f.uploads, name)
	f.mu.Unlock()
	return f.uploadFn(ctx, name, data)
}

func (f *fakeBackend) searchCalls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.searches...)
}

func (f *fakeBackend) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

// pageOf serves a window of a total-record result set with ids E0..En.
func pageOf(total, start, limit int) contract.SearchResponse {
	resp := contract.SearchResponse{TotalRecords: total}
	for i := start; i < total && i < start+limit; i++ {
		e := contract.EmployeeObject{EmpID: fmt.Sprintf("E%d", i), DurationMonth: "2024-01", PayrollMonth: "2024-02"}
		resp.Records = append(resp.Records, contract.NewEmployeeRecord(e, nil, i-start))
	}
	return resp
}

func rowIDs(rows []contract.EmployeeRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.EmpID
	}
	return out
}
