package browser

import (
	"context"
	"io"

	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/debounce"
)

// UploadFile sends a spreadsheet to the backend. On success page 1 is
// refetched once the upload settle delay has passed. A structured rejection
// fills Error, ErrorFileLink and ErrorRows from whatever the backend sent
// and opens the error modal.
func (b *Browser) UploadFile(ctx context.Context, name string, r io.Reader) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	// Uploads stay out of the search generation: a search started meanwhile
	// replaces the table contents but never aborts the upload.
	startGen := b.gen
	if b.cancelSettle != nil {
		b.cancelSettle()
		b.cancelSettle = nil
	}
	b.state.Status = StatusLoading
	b.state.Uploading = true
	b.state.Error = ""
	b.state.ErrorRows = nil
	b.state.ErrorFileLink = ""
	b.state.Success = ""
	b.state.ErrorModalOpen = false
	snap := b.publish()
	b.mu.Unlock()
	b.notify(snap)

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.life, cancel)
	res, err := b.backend.Upload(reqCtx, name, r)
	stop()
	cancel()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.state.Uploading = false
	// The table status is the upload's only while no search ran meanwhile.
	owned := startGen == b.gen && b.cancelFetch == nil

	if err == nil {
		b.state.Success = res.Message
		if b.state.Success == "" {
			b.state.Success = msgUploaded
		}
		if owned {
			b.state.Status = StatusReady
		}
		criteria := b.state.Criteria
		b.cancelSettle = debounce.Schedule(b.clock, b.settle, func() {
			if err := b.fetch(b.life, criteria, 1); err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
				b.log.WithError(err).Warn("refetch after upload failed")
			}
		})
	} else {
		var se *api.StatusError
		if errors.As(err, &se) && se.Structured {
			b.state.Error = se.Detail.Message
			b.state.ErrorFileLink = se.Detail.ErrorFile
			b.state.ErrorRows = se.Detail.ErrorRows
			b.state.ErrorModalOpen = true
		} else if errors.Is(err, api.ErrNotAuthenticated) {
			b.state.Error = msgNotAuthenticated
		} else {
			b.state.Error = msgUploadFailed
		}
		if owned {
			b.state.Status = StatusError
			b.state.Rows = nil
			b.state.Summary = nil
			b.state.TotalRecords = 0
			b.state.TotalPages = 0
		}
		b.log.WithError(err).WithField("file", name).Info("upload rejected")
	}
	snap = b.publish()
	b.mu.Unlock()
	b.notify(snap)
	return err
}
