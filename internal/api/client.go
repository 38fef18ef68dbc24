// Package api is the HTTP client for the shift allowance backend.
package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// TokenSource supplies the bearer token for each request. An empty token
// with a nil error means no session exists.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, mostly for tests and one-shot commands.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client talks to the allowance API.
type Client struct {
	cfg      Config
	tokens   TokenSource
	http     *http.Client
	observer Observer
}

// NewClient creates a Client. A nil observer discards call events.
func NewClient(cfg Config, tokens TokenSource, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// Search fetches one window of employee records.
func (c *Client) Search(ctx context.Context, criteria contract.FilterCriteria, start, limit int) (contract.SearchResponse, error) {
	body, err := c.get(ctx, "search", "/employee-details/search", criteria.Query(start, limit))
	if err != nil {
		return contract.SearchResponse{}, err
	}
	resp, err := contract.DecodeSearchResponse(body)
	if err != nil {
		return contract.SearchResponse{}, &DecodeError{Endpoint: "search", Err: err}
	}
	return resp, nil
}

// Employee fetches the full record for one employee and month pair. The raw
// body is returned alongside the decoded object.
func (c *Client) Employee(ctx context.Context, empID, durationMonth, payrollMonth string) (contract.EmployeeObject, json.RawMessage, error) {
	q := url.Values{}
	q.Set("duration_month", durationMonth)
	q.Set("payroll_month", payrollMonth)
	body, err := c.get(ctx, "detail", "/employee-details/"+url.PathEscape(empID), q)
	if err != nil {
		return contract.EmployeeObject{}, nil, err
	}
	e, err := contract.DecodeEmployee(body)
	if err != nil {
		return contract.EmployeeObject{}, nil, &DecodeError{Endpoint: "employee", Err: err}
	}
	return e, body, nil
}

// UpdateShifts sends changed shift counts and returns the backend's
// authoritative values. Updates are never retried.
func (c *Client) UpdateShifts(ctx context.Context, empID, payrollMonth, durationMonth string, fields map[string]string) ([]contract.ShiftDays, error) {
	q := url.Values{}
	q.Set("payroll_month", payrollMonth)
	q.Set("duration_month", durationMonth)
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode shift update")
	}
	req := request{
		endpoint:    "update",
		method:      http.MethodPut,
		path:        "/employee-details/" + url.PathEscape(empID) + "/shifts",
		query:       q,
		body:        payload,
		contentType: "application/json",
	}
	body, err := c.call(ctx, req, false)
	if err != nil {
		return nil, err
	}
	days, err := contract.DecodeUpdateResponse(body)
	if err != nil {
		return nil, &DecodeError{Endpoint: "update", Err: err}
	}
	return days, nil
}

// Upload posts a spreadsheet as the multipart field "file". Structured
// rejections come back as a *StatusError with Structured set.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (contract.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return contract.UploadResult{}, errors.Wrap(err, "read upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(filepath.Base(name))+`"`)
	h.Set("Content-Type", mimetype.Detect(data).String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return contract.UploadResult{}, errors.Wrap(err, "create upload part")
	}
	if _, err := part.Write(data); err != nil {
		return contract.UploadResult{}, errors.Wrap(err, "write upload part")
	}
	if err := mw.Close(); err != nil {
		return contract.UploadResult{}, errors.Wrap(err, "close multipart")
	}

	body, err := c.call(ctx, request{
		endpoint:    "upload",
		method:      http.MethodPost,
		path:        "/upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}, false)
	if err != nil {
		return contract.UploadResult{}, err
	}
	var res contract.UploadResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &res); err != nil {
			return contract.UploadResult{}, &DecodeError{Endpoint: "upload", Err: err}
		}
	}
	return res, nil
}

var summaryPaths = map[contract.SummaryKind]string{
	contract.SummaryManagers: "/summary/account-manager",
	contract.SummaryClients:  "/summary/client-departments",
	contract.SummaryMonthly:  "/summary/monthly",
}

// SummaryRaw fetches an aggregate summary payload without decoding it.
func (c *Client) SummaryRaw(ctx context.Context, kind contract.SummaryKind, months contract.MonthRange) ([]byte, error) {
	path, ok := summaryPaths[kind]
	if !ok {
		return nil, errors.Wrap(contract.ErrUnknownSummary, string(kind))
	}
	return c.get(ctx, "summary_"+string(kind), path, months.Query())
}

// Summary fetches an aggregate summary and adapts it to a rollup tree.
// Unrecognized payloads give an empty tree and recognized=false; that is
// not an error.
func (c *Client) Summary(ctx context.Context, kind contract.SummaryKind, months contract.MonthRange) (tree *rollup.Tree, recognized bool, err error) {
	body, err := c.SummaryRaw(ctx, kind, months)
	if err != nil {
		return nil, false, err
	}
	tree, recognized = contract.AdaptSummary(kind, body)
	return tree, recognized, nil
}

type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) ([]byte, error) {
	return c.call(ctx, request{endpoint: endpoint, method: http.MethodGet, path: path, query: q}, true)
}

func (c *Client) call(ctx context.Context, req request, idempotent bool) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read session token")
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotAuthenticated
	}

	start := time.Now()
	requestID := uuid.NewString()

	callCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	attempts := 1
	if idempotent {
		attempts += c.cfg.MaxRetries
	}

	var (
		body   []byte
		status int
		tried  int
	)
	for tried = 1; tried <= attempts; tried++ {
		body, status, err = c.do(callCtx, req, token, requestID)
		if err == nil || callCtx.Err() != nil || !retryable(err) {
			break
		}
	}
	if tried > attempts {
		tried = attempts
	}

	switch {
	case err == nil:
	case ctx.Err() != nil:
		err = ctx.Err()
	case callCtx.Err() != nil:
		err = ErrTimeout
	case isConnectionError(err):
		err = errors.Wrap(ErrUnavailable, err.Error())
	}

	c.observer.OnCallComplete(CallEvent{
		Endpoint:   req.endpoint,
		Method:     req.method,
		RequestID:  requestID,
		StatusCode: status,
		Attempts:   tried,
		Latency:    time.Since(start),
		Success:    err == nil,
		ErrorCode:  errorCode(err),
	})
	return body, err
}

func (c *Client) do(ctx context.Context, req request, token, requestID string) ([]byte, int, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	var rd io.Reader
	if req.body != nil {
		rd = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, rd)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, newStatusError(req.endpoint, resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
