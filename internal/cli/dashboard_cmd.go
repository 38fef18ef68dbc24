package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/contract"
)

type dashboardOptions struct {
	months      contract.MonthRange
	metricsAddr string
}

func newDashboardCmd(app *App) *cobra.Command {
	var (
		from, to    monthValue
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			months, err := contract.MonthRange{Start: from.wire, End: to.wire}.Normalize()
			if err != nil {
				return err
			}
			return runDashboard(cmd, app, dashboardOptions{months: months, metricsAddr: metricsAddr})
		},
	}

	monthFlags(cmd.Flags(), &from, &to)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", app.Config.MetricsAddr, "Serve Prometheus metrics on this address while open")

	return cmd
}

// runDashboard opens the TUI and blocks until the user quits.
func runDashboard(cmd *cobra.Command, app *App, opts dashboardOptions) error {
	if opts.metricsAddr != "" && app.Metrics != nil {
		stop, err := serveMetrics(app, opts.metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	state := newSharedState(app, opts.months)
	defer state.Close()

	p := tea.NewProgram(newAppModel(state),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
		return nil
	}
	return err
}

// serveMetrics exposes app.Metrics over HTTP until the returned func runs.
func serveMetrics(app *App, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listen for metrics")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.WithError(err).Warn("metrics server stopped")
		}
	}()
	app.Log.WithField("addr", ln.Addr().String()).Info("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
