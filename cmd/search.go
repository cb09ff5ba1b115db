package cmd

import (
	"github.com/spf13/cobra"
)

// NewCmdSearch creates the search command.
func NewCmdSearch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search GitHub users and repositories",
		Long: `Runs every query given against both user and repository search and
prints the top matches of each. Queries accept GitHub search qualifiers,
for example "language:go stars:>100". Quote a query that contains spaces.`,
		Example: `  codewatch search octocat
  codewatch search "cli language:go" "tui language:rust"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "Print cache statistics")
	return cmd
}

func runSearch(cmd *cobra.Command, queries []string, opts *Options) error {
	a, err := newApp(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	lookups := make([]lookup, len(queries))
	for i, q := range queries {
		lookups[i] = searchLookup(q)
	}
	return runLookups(cmd.Context(), a, lookups)
}
