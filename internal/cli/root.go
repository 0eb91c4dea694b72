package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/pkg/buildinfo"
	"github.com/matzehuels/stackbar/pkg/observability"
)

// RootCommand builds the command tree. -v and -q adjust the CLI logger
// before any subcommand runs; -v also logs pipeline, cache and widget events.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose, quiet bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Horizontal stacked bar charts from categorical records",
		Long: `stackbar turns a list of records, each with a total and a series of
named parts, into a horizontal stacked bar chart.

Charts are rendered to SVG, PNG, PDF or layout JSON, previewed in the
terminal, or served as an embeddable widget that reports clicks back to
its host page.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			switch {
			case verbose:
				c.SetLogLevel(LogDebug)
				c.levelFromFlags = true
				observability.LogHooks{Logger: c.Logger}.Install()
			case quiet:
				c.SetLogLevel(LogError)
				c.levelFromFlags = true
			}
			cmd.SetContext(log.WithContext(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return err
		},
	}
}
