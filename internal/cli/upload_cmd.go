package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/export"
)

// ErrMissingColumns is returned when an upload file lacks required headers.
var ErrMissingColumns = errors.New("upload file is missing required columns")

func newUploadCmd(app *App) *cobra.Command {
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a shift allowance spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, pre, err := readUpload(args[0], skipCheck)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if pre.DataRows > 0 {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%d data rows", pre.DataRows)))
			}

			b := app.newBrowser(cmd.Context())
			defer b.Close()

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Uploading "+filepath.Base(args[0]))
			err = b.UploadFile(cmd.Context(), filepath.Base(args[0]), bytes.NewReader(data))
			stop()

			snap := b.Snapshot()
			if err == nil {
				fmt.Fprintln(out, formatter.Success(snap.Success))
				return nil
			}
			if snap.ErrorModalOpen {
				fmt.Fprintln(out, formatter.RenderModal("Upload failed",
					formatter.RenderUploadErrors(snap.Error, snap.ErrorFileLink, snap.ErrorRows)))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Send the file without checking its columns first")

	return cmd
}

// readUpload reads path and, unless skipped, checks its header row.
func readUpload(path string, skipCheck bool) ([]byte, export.Preflight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, export.Preflight{}, errors.Wrap(err, "read upload file")
	}
	if skipCheck {
		return data, export.Preflight{}, nil
	}
	pre, err := export.Check(data)
	if err != nil {
		return nil, pre, err
	}
	if !pre.OK() {
		return nil, pre, errors.Wrap(ErrMissingColumns, strings.Join(pre.MissingColumns, ", "))
	}
	return data, pre, nil
}

// uploadOutcome renders the browser's upload result for the TUI.
func uploadOutcome(snap browser.Snapshot) string {
	if snap.Success != "" {
		return formatter.Success(snap.Success)
	}
	if snap.Error != "" {
		return formatter.Failure(snap.Error)
	}
	return ""
}
