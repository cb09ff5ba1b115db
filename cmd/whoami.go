package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCmdWhoami creates the whoami command.
func NewCmdWhoami(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in GitHub user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			creds, ok := a.svc.CurrentUser()
			if !ok {
				return errors.New("not logged in. Run `codewatch login <username>`")
			}

			host := "github.com"
			if a.cfg.APIURL != "" {
				host = a.cfg.APIURL
			}
			fmt.Fprintf(a.out, "%s (%s)\n", creds.Username, host)
			return nil
		},
	}
}
