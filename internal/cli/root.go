package cli

import (
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/config"
	"github.com/alexanderramin/shiftdash/internal/session"
)

// App holds everything the commands and the dashboard need.
type App struct {
	API      API
	Sessions *session.Store
	Config   *config.Config
	Log      logrus.FieldLogger
	Clock    clockwork.Clock
	// Metrics is the registry the API observer records into; the dashboard
	// serves it when a metrics address is set.
	Metrics *prometheus.Registry

	IsInteractive func() bool
}

// NewRootCmd creates the top-level "shiftdash" command and registers all
// subcommands against the provided App. Run with no subcommand on a
// terminal it opens the dashboard.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "shiftdash",
		Short:         "Shift allowance dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runDashboard(cmd, app, dashboardOptions{metricsAddr: app.Config.MetricsAddr})
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newSummaryCmd(app),
		newEmployeesCmd(app),
		newUploadCmd(app),
		newDashboardCmd(app),
	)

	return root
}
