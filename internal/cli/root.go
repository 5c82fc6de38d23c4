// Package cli implements the kendall command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/oplozada/estadistica/pkg/logger"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCommand creates the `kendall` command and its subcommands. Reports go
// to out; logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "kendall",
		Short:         "Kendall's coefficient of concordance for rater agreement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.WithOutput(errOut), logger.WithFormat(opts.logFormat)); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return logger.SetLevelString(opts.logLevel)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newEvaluateCommand(),
		newDemoCommand(),
		newAdjustCommand(),
		newSimulateCommand(),
		newVersionCommand(),
	)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "kendall", Version)
			return err
		},
	}
}
