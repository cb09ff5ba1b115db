package cmd

import (
	"github.com/spf13/cobra"
)

// NewCmdUser creates the user command.
func NewCmdUser(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <username>...",
		Short: "Show GitHub user profiles",
		Long: `Fetches the profile of every user given and prints them in order.
Users looked up recently are served from the cache.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUser(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "Print cache statistics")
	return cmd
}

func runUser(cmd *cobra.Command, usernames []string, opts *Options) error {
	a, err := newApp(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	lookups := make([]lookup, len(usernames))
	for i, name := range usernames {
		lookups[i] = userLookup(name)
	}
	return runLookups(cmd.Context(), a, lookups)
}
