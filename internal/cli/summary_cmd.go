package cli

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/export"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

func newSummaryCmd(app *App) *cobra.Command {
	var (
		from, to          monthValue
		dir               sortValue
		metric            metricValue
		expandAll         bool
		highlight, filter string
		xlsxPath          string
	)

	cmd := &cobra.Command{
		Use:       "summary managers|clients|monthly",
		Short:     "Show an allowance rollup",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(contract.SummaryManagers), string(contract.SummaryClients), string(contract.SummaryMonthly)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := contract.ParseSummaryKind(args[0])
			if err != nil {
				return err
			}
			months, err := contract.MonthRange{Start: from.wire, End: to.wire}.Normalize()
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Loading "+kind.Title())
			tree, recognized, err := app.API.Summary(cmd.Context(), kind, months)
			stop()
			if err != nil {
				return err
			}

			exp := rollup.CollapseAll()
			if expandAll {
				exp = rollup.ExpandAll(tree)
			}
			rows := rollup.FilterRows(rollup.Flatten(tree, exp, sortState(dir, metric)), filter)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(kind.Title()))
			if !recognized {
				fmt.Fprintln(out, formatter.Dim("The server sent a summary this version cannot read."))
			}
			fmt.Fprint(out, formatter.RenderRollup(rows, formatter.TreeOptions{
				Levels:      kind.Levels(),
				Highlighted: highlight,
				Index:       rollup.NewHighlightIndex(tree),
				Cursor:      -1,
			}))

			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(f *os.File) error {
					return export.WriteTree(f, kind.Levels(), rows)
				}); err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Wrote %d rows to %s", len(rows), xlsxPath)))
			}
			return nil
		},
	}

	monthFlags(cmd.Flags(), &from, &to)
	cmd.Flags().Var(&dir, "sort", "Sort rows by metric: asc or desc")
	cmd.Flags().Var(&metric, "by", "Sort metric: total or heads")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand every level")
	cmd.Flags().StringVar(&highlight, "highlight", "", "Highlight rows related to this name")
	cmd.Flags().StringVar(&filter, "filter", "", "Keep rows fuzzily matching this text, with their parents")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the rows to this .xlsx file")

	return cmd
}

// writeFile creates path and hands it to fn, removing the file if fn fails.
func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return errors.Wrap(f.Close(), "close export file")
}
