package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/buildinfo"
	"github.com/cleared-dev/ledger/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	repo      string
	logLevel  string
	logFormat string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Multi-currency double-entry ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logging.Setup(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.repo, "repo", ".", "ledger directory")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "human", "log format (human or json)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountsCommand(opts),
		newBalanceCommand(opts),
		newTxCommand(opts),
	)

	return rootCmd
}
