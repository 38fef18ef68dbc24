package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/export"
)

func newEmployeesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Search, inspect and correct employee allowance records",
	}

	cmd.AddCommand(
		newEmployeesSearchCmd(app),
		newEmployeesShowCmd(app),
		newEmployeesEditCmd(app),
	)

	return cmd
}

func newEmployeesSearchCmd(app *App) *cobra.Command {
	var (
		criteria    contract.FilterCriteria
		from, to    monthValue
		page, limit int
		xlsxPath    string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List employee records matching filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(browser.PageSizes, limit) {
				return errors.Wrapf(browser.ErrPageSize, "%d (use one of %v)", limit, browser.PageSizes)
			}
			criteria.StartMonth, criteria.EndMonth = from.wire, to.wire

			opts := app.Config.Browser()
			opts.PageSize = limit
			opts.Clock = app.Clock
			opts.Logger = app.Log
			b := browser.New(app.API, opts)
			defer b.Close()

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Searching")
			err := b.ApplyFilters(cmd.Context(), criteria, page)
			stop()
			if err != nil {
				return err
			}

			snap := b.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.RenderRecords(snap.Rows, -1))
			if s := formatter.RenderShiftSummary(snap.Summary); s != "" {
				fmt.Fprintln(out, s)
			}
			fmt.Fprintln(out, formatter.RenderPager(snap))

			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(f *os.File) error {
					return export.WriteRecords(f, snap.Rows, snap.Summary)
				}); err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Wrote %d records to %s", len(snap.Rows), xlsxPath)))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&criteria.EmpID, "emp-id", "", "Employee ID")
	fs.StringVar(&criteria.AccountManager, "manager", "", "Account manager")
	fs.StringVar(&criteria.Department, "department", "", "Department")
	fs.StringVar(&criteria.Client, "client", "", "Client")
	monthFlags(fs, &from, &to)
	fs.IntVar(&page, "page", 1, "Page number")
	fs.IntVar(&limit, "limit", browser.DefaultPageSize, "Records per page (5, 10, 20 or 50)")
	fs.StringVar(&xlsxPath, "xlsx", "", "Also write the page to this .xlsx file")

	return cmd
}

// recordKey holds the flags that identify one employee record.
type recordKey struct {
	duration, payroll monthValue
}

func (k *recordKey) register(cmd *cobra.Command) {
	cmd.Flags().Var(&k.duration, "duration", "Duration month of the record")
	cmd.Flags().Var(&k.payroll, "payroll", "Payroll month of the record")
	_ = cmd.MarkFlagRequired("duration")
	_ = cmd.MarkFlagRequired("payroll")
}

func newEmployeesShowCmd(app *App) *cobra.Command {
	var (
		key    recordKey
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show EMP_ID",
		Short: "Show one employee record with its monthly shift counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := app.newBrowser(cmd.Context())
			defer b.Close()

			d, err := b.FetchDetail(cmd.Context(), args[0], key.duration.wire, key.payroll.wire)
			if err != nil {
				return err
			}
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), string(d.Raw()))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderEmployeeDetail(d.Record(), -1, nil))
			return nil
		},
	}
	key.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as the API returned it")
	return cmd
}

func newEmployeesEditCmd(app *App) *cobra.Command {
	var (
		key                    recordKey
		month                  monthValue
		shiftA, shiftB, shiftC string
		prime                  string
	)

	cmd := &cobra.Command{
		Use:   "edit EMP_ID",
		Short: "Correct shift day counts for one month of a record",
		Long: "Only the shifts you pass are sent. The month defaults to the record's\n" +
			"duration month.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.newBrowser(ctx)
			defer b.Close()

			d, err := b.FetchDetail(ctx, args[0], key.duration.wire, key.payroll.wire)
			if err != nil {
				return err
			}
			target := month.wire
			if target == "" {
				target = key.duration.wire
			}
			edit, err := d.Current(target)
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			changed := false
			for _, f := range []struct {
				name string
				dst  *string
				val  string
			}{
				{"a", &edit.ShiftA, shiftA},
				{"b", &edit.ShiftB, shiftB},
				{"c", &edit.ShiftC, shiftC},
				{"prime", &edit.Prime, prime},
			} {
				if fs.Changed(f.name) {
					*f.dst = f.val
					changed = true
				}
			}
			if !changed {
				return errors.New("nothing to change: pass at least one of --a, --b, --c, --prime")
			}

			if err := d.SaveShiftEdit(ctx, target, edit); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Success("Saved "+args[0]))
			fmt.Fprint(out, formatter.RenderEmployeeDetail(d.Record(), -1, nil))
			return nil
		},
	}

	key.register(cmd)
	cmd.Flags().Var(&month, "month", "Month to edit (defaults to the duration month)")
	cmd.Flags().StringVar(&shiftA, "a", "", "Shift A days")
	cmd.Flags().StringVar(&shiftB, "b", "", "Shift B days")
	cmd.Flags().StringVar(&shiftC, "c", "", "Shift C days")
	cmd.Flags().StringVar(&prime, "prime", "", "PRIME shift days")

	return cmd
}
