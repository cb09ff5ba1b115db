package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus(opts))
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the current GitHub API rate limit status for the logged-in
user, or for GITHUB_TOKEN when nobody is logged in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimitStatus(cmd, opts)
		},
	}
}

func runRateLimitStatus(cmd *cobra.Command, opts *Options) error {
	a, err := newApp(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	creds, _ := a.svc.CurrentUser()
	quotas, err := a.client.RateLimits(cmd.Context(), creds.Token)
	if err != nil {
		return fmt.Errorf("failed to get rate limits: %w", err)
	}

	fmt.Fprintln(a.out, "GitHub API Rate Limits:")
	fmt.Fprintln(a.out)

	for _, q := range quotas {
		resetIn := time.Until(q.ResetAt).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Fprintf(a.out, "%-8s %d/%d remaining (resets in %s)\n",
			q.Name+":", q.Remaining, q.Limit, resetIn)
	}

	return nil
}
