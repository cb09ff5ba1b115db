package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "codewatch",
		Short: "Look up and search GitHub users and repositories",
		Long: `A CLI tool that shows GitHub user profiles and repositories with
their recent commits. Lookups run concurrently, are cached for the life of
the command, and use your login when you have one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.Format, "output", "o", "", "Output format (text, json)")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	flags.Var(&opts.Progress, "progress", "Show lookup progress (auto, always, never)")
	flags.Lookup("progress").NoOptDefVal = string(ProgressAlways)

	// Profiling flags
	flags.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	flags.StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	flags.StringVar(&opts.Trace, "trace", "", "Write execution trace to file")

	// Register subcommands
	rootCmd.AddCommand(NewCmdLogin(opts))
	rootCmd.AddCommand(NewCmdLogout(opts))
	rootCmd.AddCommand(NewCmdWhoami(opts))
	rootCmd.AddCommand(NewCmdUser(opts))
	rootCmd.AddCommand(NewCmdRepo(opts))
	rootCmd.AddCommand(NewCmdSearch(opts))
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdConfig(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
