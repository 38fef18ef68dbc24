package cli

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var token, user string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.Save(cmd.Context(), token, user, app.Config.APIURL, ttl)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Signed in to %s", formatter.Bold(sess.APIURL))
			if sess.Username != "" {
				msg += " as " + formatter.Bold(sess.Username)
			}
			if sess.ExpiresAt != nil {
				msg += formatter.Dim(fmt.Sprintf(" (expires %s)", sess.ExpiresAt.Format(time.RFC3339)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the API")
	cmd.Flags().StringVar(&user, "user", "", "Name to show for this session")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Forget the token after this long (0 keeps it)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.Current(cmd.Context())
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Not signed in. Run: shiftdash login --token TOKEN"))
				return nil
			}
			if err != nil {
				return err
			}
			user := sess.Username
			if user == "" {
				user = formatter.Dim("(unnamed)")
			}
			rows := [][]string{
				{"User", user},
				{"API", sess.APIURL},
				{"Since", sess.CreatedAt.Format(time.RFC3339)},
			}
			if sess.ExpiresAt != nil {
				rows = append(rows, []string{"Expires", sess.ExpiresAt.Format(time.RFC3339)})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"SESSION", ""}, rows))
			return nil
		},
	}
}
