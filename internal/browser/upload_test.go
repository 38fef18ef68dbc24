package browser

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

func structuredUploadError(t *testing.T, body string) error {
	t.Helper()
	d, ok := contract.DecodeUploadError([]byte(body))
	require.True(t, ok)
	return &api.StatusError{Endpoint: "upload", StatusCode: http.StatusUnprocessableEntity, Detail: d, Structured: true}
}

func TestUploadFile_StructuredFailureOpensModal(t *testing.T) {
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		return contract.UploadResult{}, structuredUploadError(t, `{"detail":{"message":"3 rows failed","error_file":"url",
			"error_rows":[{"emp_id":"E1","reason":{"department":"required"}}]}}`)
	}
	b, _ := newTestBrowser(t, backend)

	err := b.UploadFile(context.Background(), "shifts.xlsx", strings.NewReader("data"))
	require.Error(t, err)

	snap := b.Snapshot()
	assert.Equal(t, "3 rows failed", snap.Error)
	assert.Equal(t, "url", snap.ErrorFileLink)
	require.Len(t, snap.ErrorRows, 1)
	assert.Equal(t, "required", snap.ErrorRows[0].Reason["department"])
	assert.True(t, snap.ErrorModalOpen)
	assert.False(t, snap.Uploading)
	assert.Equal(t, StatusError, snap.Status)

	b.DismissErrorModal()
	assert.False(t, b.Snapshot().ErrorModalOpen)
}

func TestUploadFile_PartialDetailLeavesOtherFieldsCleared(t *testing.T) {
	calls := 0
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		calls++
		if calls == 1 {
			return contract.UploadResult{}, structuredUploadError(t, `{"detail":{"message":"bad","error_file":"f1",
				"error_rows":[{"emp_id":"E1","reason":"dup"}]}}`)
		}
		return contract.UploadResult{}, structuredUploadError(t, `{"detail":{"error_file":"f2"}}`)
	}
	b, _ := newTestBrowser(t, backend)

	_ = b.UploadFile(context.Background(), "a.xlsx", strings.NewReader("1"))
	_ = b.UploadFile(context.Background(), "b.xlsx", strings.NewReader("2"))

	snap := b.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Equal(t, "f2", snap.ErrorFileLink)
	assert.Empty(t, snap.ErrorRows)
	assert.True(t, snap.ErrorModalOpen)
}

func TestUploadFile_GenericFailure(t *testing.T) {
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		return contract.UploadResult{}, errors.Wrap(api.ErrUnavailable, "dial tcp")
	}
	b, _ := newTestBrowser(t, backend)

	err := b.UploadFile(context.Background(), "a.xlsx", strings.NewReader("1"))
	assert.ErrorIs(t, err, api.ErrUnavailable)

	snap := b.Snapshot()
	assert.Equal(t, msgUploadFailed, snap.Error)
	assert.False(t, snap.ErrorModalOpen)
	assert.Empty(t, snap.ErrorFileLink)
}

func TestUploadFile_SuccessRefetchesFirstPageAfterSettle(t *testing.T) {
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		assert.Equal(t, "rows", string(data))
		return contract.UploadResult{Message: "12 rows imported"}, nil
	}
	b, clock := newTestBrowser(t, backend)
	ctx := context.Background()

	require.NoError(t, b.ApplyFilters(ctx, contract.FilterCriteria{Client: "Acme"}, 2))
	require.NoError(t, b.UploadFile(ctx, "shifts.xlsx", strings.NewReader("rows")))

	snap := b.Snapshot()
	assert.Equal(t, "12 rows imported", snap.Success)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Len(t, backend.searchCalls(), 1, "refetch waits for the settle delay")

	clock.Advance(DefaultUploadSettle - time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, backend.searchCalls(), 1)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return len(backend.searchCalls()) == 2 }, time.Second, 5*time.Millisecond)
	last := backend.searchCalls()[1]
	assert.Equal(t, 0, last.start)
	assert.Equal(t, "Acme", last.criteria.Client)
	require.Eventually(t, func() bool { return b.Snapshot().Page == 1 && b.Snapshot().Status == StatusReady }, time.Second, 5*time.Millisecond)
}

func TestUploadFile_ClearsPreviousOutcome(t *testing.T) {
	ok := false
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		if ok {
			return contract.UploadResult{}, nil
		}
		return contract.UploadResult{}, structuredUploadError(t, `{"detail":{"message":"bad","error_rows":[{"emp_id":"E1"}]}}`)
	}
	b, _ := newTestBrowser(t, backend)

	_ = b.UploadFile(context.Background(), "a.xlsx", strings.NewReader("1"))
	ok = true
	require.NoError(t, b.UploadFile(context.Background(), "a.xlsx", strings.NewReader("1")))

	snap := b.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Empty(t, snap.ErrorRows)
	assert.False(t, snap.ErrorModalOpen)
	assert.Equal(t, msgUploaded, snap.Success)
}

func TestUploadFile_SearchDuringUploadDoesNotCancelIt(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{}
	backend.uploadFn = func(ctx context.Context, name string, data []byte) (contract.UploadResult, error) {
		close(entered)
		select {
		case <-release:
			return contract.UploadResult{Message: "uploaded"}, nil
		case <-ctx.Done():
			return contract.UploadResult{}, ctx.Err()
		}
	}
	b, _ := newTestBrowser(t, backend)

	errc := make(chan error, 1)
	go func() { errc <- b.UploadFile(context.Background(), "shifts.xlsx", strings.NewReader("rows")) }()
	<-entered

	require.NoError(t, b.ApplyFilters(context.Background(), contract.FilterCriteria{EmpID: "E1"}, 1))
	snap := b.Snapshot()
	assert.True(t, snap.Uploading)
	assert.Equal(t, StatusReady, snap.Status)

	close(release)
	require.NoError(t, <-errc)

	snap = b.Snapshot()
	assert.False(t, snap.Uploading)
	assert.Equal(t, "uploaded", snap.Success)
	assert.Empty(t, snap.Error)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, "E1", snap.Criteria.EmpID)
	assert.NotEmpty(t, snap.Rows)
}
