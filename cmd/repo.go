package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spiffcs/codewatch/internal/model"
)

// NewCmdRepo creates the repo command.
func NewCmdRepo(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo <owner/name>...",
		Short: "Show GitHub repositories and their recent commits",
		Long: `Fetches every repository given together with its most recent commits
and prints them in order. A repository is reported only when both its
details and its commits could be fetched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepo(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "Print cache statistics")
	return cmd
}

// parseRepoArgs parses every owner/name argument, failing on the first
// malformed one.
func parseRepoArgs(args []string) ([]model.RepoKey, error) {
	keys := make([]model.RepoKey, 0, len(args))
	for _, arg := range args {
		key, err := model.ParseRepoKey(arg)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func runRepo(cmd *cobra.Command, args []string, opts *Options) error {
	keys, err := parseRepoArgs(args)
	if err != nil {
		return err
	}

	a, err := newApp(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	lookups := make([]lookup, len(keys))
	for i, key := range keys {
		lookups[i] = repoLookup(key)
	}
	return runLookups(cmd.Context(), a, lookups)
}
