package cli

import (
	"context"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// API is the backend surface the commands and views use. *api.Client
// satisfies it.
type API interface {
	browser.Backend
	Summary(ctx context.Context, kind contract.SummaryKind, months contract.MonthRange) (*rollup.Tree, bool, error)
}

// newBrowser builds a record browser from the configured options, the
// stored page size preference and the app's clock and logger.
func (a *App) newBrowser(ctx context.Context) *browser.Browser {
	opts := a.Config.Browser()
	opts.Clock = a.Clock
	opts.Logger = a.Log
	if a.Sessions != nil {
		opts.PageSize = a.Sessions.PageSize(ctx, opts.PageSize)
	}
	return browser.New(a.API, opts)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
