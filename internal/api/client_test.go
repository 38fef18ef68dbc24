package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/shiftdash/internal/contract"
)

type recordingObserver struct {
	events []CallEvent
}

func (r *recordingObserver) OnCallComplete(e CallEvent) { r.events = append(r.events, e) }

func testClient(t *testing.T, h http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	obs := &recordingObserver{}
	return NewClient(cfg, StaticToken("tok-1"), obs), obs
}

func TestClient_Search(t *testing.T) {
	client, obs := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employee-details/search", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "10", r.URL.Query().Get("start"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "2024-01", r.URL.Query().Get("start_month"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"total_records":11,"data":[{"emp_id":"E11","emp_name":"Meera"},{"total_allowances":100}]}`)
	})

	resp, err := client.Search(context.Background(), contract.FilterCriteria{StartMonth: "2024-01"}, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 11, resp.TotalRecords)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Meera", resp.Records[0].EmpName)
	assert.NotNil(t, resp.Summary)

	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, "search", obs.events[0].Endpoint)
	assert.Equal(t, http.StatusOK, obs.events[0].StatusCode)
}

func TestClient_NotAuthenticatedFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	client := NewClient(cfg, StaticToken(""), nil)

	_, err := client.Search(context.Background(), contract.FilterCriteria{}, 0, 10)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, hits.Load())
}

func TestClient_UnauthorizedStatusMapsToNotAuthenticated(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _, err := client.Employee(context.Background(), "E1", "2024-01", "2024-02")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestClient_RetriesServerErrorsOnGet(t *testing.T) {
	var hits atomic.Int32
	client, obs := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"emp_id":"E1","months":[]}`)
	})

	e, raw, err := client.Employee(context.Background(), "E1", "2024-01", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "E1", e.EmpID)
	assert.JSONEq(t, `{"emp_id":"E1","months":[]}`, string(raw))
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, 3, obs.events[0].Attempts)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, _, err := client.Employee(context.Background(), "E404", "2024-01", "2024-02")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRetries = 0
	client := NewClient(cfg, StaticToken("t"), nil)

	_, err := client.Search(context.Background(), contract.FilterCriteria{}, 0, 10)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_CallerCancellationIsNotATimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	client := NewClient(cfg, StaticToken("t"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := client.Search(ctx, contract.FilterCriteria{}, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestClient_Unavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	cfg.MaxRetries = 0
	client := NewClient(cfg, StaticToken("t"), nil)

	_, err := client.Search(context.Background(), contract.FilterCriteria{}, 0, 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_MalformedBody(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": 42}`)
	})

	_, err := client.Search(context.Background(), contract.FilterCriteria{}, 0, 10)
	assert.ErrorIs(t, err, ErrDecode)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "search", de.Endpoint)
	require.Error(t, de.Err)
	assert.Equal(t, de.Err, errors.Unwrap(de))
}

func TestClient_UpdateShiftsSendsOnlyGivenFields(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/employee-details/E%2F1/shifts", r.URL.EscapedPath())
		assert.Equal(t, "2024-02", r.URL.Query().Get("payroll_month"))
		assert.Equal(t, "2024-01", r.URL.Query().Get("duration_month"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"shift_a":"4"}`, string(body))
		io.WriteString(w, `[{"shift":"A","days":"4"}]`)
	})

	days, err := client.UpdateShifts(context.Background(), "E/1", "2024-02", "2024-01", map[string]string{"shift_a": "4"})
	require.NoError(t, err)
	assert.Equal(t, []contract.ShiftDays{{Shift: "A", Days: "4"}}, days)
}

func TestClient_UpdateIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.UpdateShifts(context.Background(), "E1", "2024-02", "2024-01", map[string]string{"prime": "1"})
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_UploadMultipart(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "shifts.csv", hdr.Filename)
		assert.True(t, strings.HasPrefix(hdr.Header.Get("Content-Type"), "text/"))
		data, _ := io.ReadAll(f)
		assert.Equal(t, "emp_id,shift_a\nE1,3\n", string(data))
		io.WriteString(w, `{"message":"uploaded 1 row"}`)
	})

	res, err := client.Upload(context.Background(), "/tmp/shifts.csv", strings.NewReader("emp_id,shift_a\nE1,3\n"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded 1 row", res.Message)
}

func TestClient_UploadStructuredFailure(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":{"message":"3 rows failed","error_file":"url",
			"error_rows":[{"emp_id":"E1","reason":{"department":"required"}}]}}`)
	})

	_, err := client.Upload(context.Background(), "shifts.xlsx", strings.NewReader("x"))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Structured)
	assert.Equal(t, "3 rows failed", se.Message())
	assert.Equal(t, "url", se.Detail.ErrorFile)
	assert.Len(t, se.Detail.ErrorRows, 1)
}

func TestClient_Summary(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary/account-manager", r.URL.Path)
		assert.Equal(t, "2024-03", r.URL.Query().Get("end_month"))
		io.WriteString(w, `[{"name":"Mgr1","clients":[{"client_name":"C1","head_count":5,"total_allowance":5000}]}]`)
	})

	tree, ok, err := client.Summary(context.Background(), contract.SummaryManagers, contract.MonthRange{End: "2024-03"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, 5, tree.Roots[0].HeadCount)
}

func TestClient_SummaryUnknownShapeIsNotAnError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"warming up"}`)
	})

	tree, ok, err := client.Summary(context.Background(), contract.SummaryClients, contract.MonthRange{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, tree.Len())
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewMetricsObserver(reg)

	obs.OnCallComplete(CallEvent{Endpoint: "search", StatusCode: 200, Success: true, Latency: 10 * time.Millisecond})
	obs.OnCallComplete(CallEvent{Endpoint: "search", StatusCode: 200, Success: true})
	obs.OnCallComplete(CallEvent{Endpoint: "upload", ErrorCode: "UNAVAILABLE"})

	assert.Equal(t, 2.0, testutil.ToFloat64(obs.requests.WithLabelValues("search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.requests.WithLabelValues("upload", "error")))
}

func TestLogObserver(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	obs := NewLogObserver(logger)

	obs.OnCallComplete(CallEvent{Endpoint: "detail", RequestID: "r-1", Success: true})
	obs.OnCallComplete(CallEvent{Endpoint: "upload", ErrorCode: "HTTP_422"})

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.InfoLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, "r-1", hook.AllEntries()[0].Data["request_id"])
	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "HTTP_422", last.Data["error_code"])
}
