// Package browser owns the query lifecycle of the employee record table:
// filter criteria, debounced search, pagination, detail edits and uploads.
// All methods are safe for concurrent use; the latest request always wins.
package browser

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/debounce"
)

// Backend is the subset of the API client the browser needs.
type Backend interface {
	Search(ctx context.Context, criteria contract.FilterCriteria, start, limit int) (contract.SearchResponse, error)
	Employee(ctx context.Context, empID, durationMonth, payrollMonth string) (contract.EmployeeObject, json.RawMessage, error)
	UpdateShifts(ctx context.Context, empID, payrollMonth, durationMonth string, fields map[string]string) ([]contract.ShiftDays, error)
	Upload(ctx context.Context, name string, r io.Reader) (contract.UploadResult, error)
}

// Options tunes a Browser. Zero values take the defaults.
type Options struct {
	PageSize     int
	Debounce     time.Duration
	UploadSettle time.Duration
	Clock        clockwork.Clock
	Logger       logrus.FieldLogger
}

const (
	// DefaultDebounce is the as-you-type search delay.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultUploadSettle is the wait before refetching after an upload.
	DefaultUploadSettle = 2 * time.Second
)

// Browser is a paginated, filterable view over the employee search endpoint.
type Browser struct {
	backend Backend
	clock   clockwork.Clock
	settle  time.Duration
	log     logrus.FieldLogger

	life      context.Context
	stopLife  context.CancelFunc
	debouncer *debounce.Debouncer

	mu           sync.Mutex
	state        Snapshot
	gen          uint64
	cancelFetch  context.CancelFunc
	cancelSettle debounce.CancelFunc
	listeners    map[int]func(Snapshot)
	nextID       int
	closed       bool
}

// New creates an idle browser. Nothing is fetched until a filter, page or
// refresh call.
func New(backend Backend, opts Options) *Browser {
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.UploadSettle == 0 {
		opts.UploadSettle = DefaultUploadSettle
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	life, stop := context.WithCancel(context.Background())
	return &Browser{
		backend:   backend,
		clock:     opts.Clock,
		settle:    opts.UploadSettle,
		log:       opts.Logger.WithField("component", "browser"),
		life:      life,
		stopLife:  stop,
		debouncer: debounce.New(opts.Clock, opts.Debounce),
		state:     Snapshot{Status: StatusIdle, Page: 1, PageSize: opts.PageSize},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current state.
func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// OnChange registers fn to receive every state change. The returned func
// unregisters it. fn runs on the goroutine that made the change, so changes
// made concurrently may arrive out of order; a snapshot whose Version is not
// above the last one seen is stale and can be ignored.
func (b *Browser) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// ApplyFilters normalizes criteria and fetches page immediately.
func (b *Browser) ApplyFilters(ctx context.Context, criteria contract.FilterCriteria, page int) error {
	normalized, err := criteria.Normalize()
	if err != nil {
		b.update(func(s *Snapshot) { s.Error = errorMessage(err) })
		return err
	}
	return b.fetch(ctx, normalized, page)
}

// DebouncedFetch is ApplyFilters for as-you-type input: calls arriving
// within the debounce window replace each other and only the last runs.
func (b *Browser) DebouncedFetch(criteria contract.FilterCriteria, page int) {
	b.debouncer.Trigger(func() {
		if err := b.ApplyFilters(b.life, criteria, page); err != nil && !errors.Is(err, ErrSuperseded) {
			b.log.WithError(err).Debug("debounced search failed")
		}
	})
}

// ChangePage refetches the current criteria at page.
func (b *Browser) ChangePage(ctx context.Context, page int) error {
	b.mu.Lock()
	criteria := b.state.Criteria
	if b.state.TotalPages > 0 && page > b.state.TotalPages {
		page = b.state.TotalPages
	}
	b.mu.Unlock()
	return b.fetch(ctx, criteria, page)
}

// SetPageSize switches the page size and returns to page 1.
func (b *Browser) SetPageSize(ctx context.Context, size int) error {
	if !validPageSize(size) {
		return errors.Wrapf(ErrPageSize, "%d", size)
	}
	b.mu.Lock()
	b.state.PageSize = size
	criteria := b.state.Criteria
	b.mu.Unlock()
	return b.fetch(ctx, criteria, 1)
}

// Refresh refetches the current criteria and page and clears NeedsRefresh.
func (b *Browser) Refresh(ctx context.Context) error {
	b.mu.Lock()
	criteria, page := b.state.Criteria, b.state.Page
	b.state.NeedsRefresh = false
	b.mu.Unlock()
	return b.fetch(ctx, criteria, page)
}

// DismissErrorModal closes the upload error dialog.
func (b *Browser) DismissErrorModal() {
	b.update(func(s *Snapshot) { s.ErrorModalOpen = false })
}

// Close cancels pending timers and in-flight requests. Responses that
// arrive afterwards are dropped.
func (b *Browser) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.cancelFetch != nil {
		b.cancelFetch()
		b.cancelFetch = nil
	}
	if b.cancelSettle != nil {
		b.cancelSettle()
		b.cancelSettle = nil
	}
	b.listeners = map[int]func(Snapshot){}
	b.mu.Unlock()

	b.debouncer.Stop()
	b.stopLife()
}

// begin starts a new request generation, cancelling the previous one. The
// returned context is also cancelled when the browser closes.
func (b *Browser) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc, error) {
	if b.closed {
		return 0, nil, nil, ErrClosed
	}
	b.gen++
	if b.cancelFetch != nil {
		b.cancelFetch()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.life, cancel)
	b.cancelFetch = cancel
	return b.gen, reqCtx, func() { stop(); cancel() }, nil
}

func (b *Browser) fetch(ctx context.Context, criteria contract.FilterCriteria, page int) error {
	if page < 1 {
		page = 1
	}

	b.mu.Lock()
	gen, reqCtx, done, err := b.begin(ctx)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.state.Status = StatusLoading
	b.state.Criteria = criteria
	b.state.Page = page
	b.state.Error = ""
	size := b.state.PageSize
	snap := b.publish()
	b.mu.Unlock()
	b.notify(snap)

	resp, err := b.backend.Search(reqCtx, criteria, Offset(page, size), size)
	done()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if gen != b.gen {
		b.mu.Unlock()
		b.log.WithField("generation", gen).Debug("dropping superseded search result")
		return ErrSuperseded
	}
	b.cancelFetch = nil
	if err != nil {
		b.state.Status = StatusError
		b.state.Rows = nil
		b.state.Summary = nil
		b.state.TotalRecords = 0
		b.state.TotalPages = 0
		b.state.Error = errorMessage(err)
	} else {
		rows := resp.Records
		if len(rows) > size {
			// Backend ignored the window; page locally.
			rows = Window(rows, page, size)
		}
		b.state.Status = StatusReady
		b.state.Rows = slices.Clone(rows)
		b.state.Summary = resp.Summary
		b.state.TotalRecords = resp.TotalRecords
		b.state.TotalPages = TotalPages(resp.TotalRecords, size)
	}
	snap = b.publish()
	b.mu.Unlock()
	b.notify(snap)
	return err
}

func (b *Browser) update(fn func(*Snapshot)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fn(&b.state)
	snap := b.publish()
	b.mu.Unlock()
	b.notify(snap)
}

// publish stamps the next version on the state and returns a copy for
// listeners. Callers hold b.mu.
func (b *Browser) publish() Snapshot {
	b.state.Version++
	return b.state.clone()
}

func (b *Browser) notify(snap Snapshot) {
	b.mu.Lock()
	fns := make([]func(Snapshot), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
