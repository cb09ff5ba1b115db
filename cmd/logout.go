package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCmdLogout creates the logout command.
func NewCmdLogout(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved GitHub session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			creds, ok := a.svc.CurrentUser()
			a.svc.LogOut()
			if !ok {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(a.out, "Logged out of %s.\n", creds.Username)
			return nil
		},
	}
}
