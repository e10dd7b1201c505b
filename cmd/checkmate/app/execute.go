package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate/internal/cmd/output"
)

// Execute runs the checkmate CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "checkmate",
		Short:   "STIG checklist upgrade CLI",
		Version: a.version,
		Long: `Checkmate carries compliance evaluations across benchmark releases.

Given checklists completed against one STIG release and a freshly generated
checklist for a newer release, it produces upgraded checklists that keep
every status, comment, finding detail and severity override for rules that
still exist, flags the rules that are new, and reports the ones removed.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.checkmate.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("checkmate {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		flagged := *a.config
		loaded, err := LoadConfigFile(flagged.ConfigFile)
		if err != nil {
			return err
		}
		loaded.UpdateFromFlags(flagged.Verbose, flagged.Quiet, flagged.Format, flagged.LogLevel)
		// Copy in place: the root flags are bound to fields of a.config.
		*a.config = *loaded
	}

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}
	if a.config.Format == "" {
		a.config.Format = string(output.DetectFormat(""))
	}
	if err := a.validate(); err != nil {
		return err
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.CreateUpgradeCommand())
	rootCmd.AddCommand(a.CreateCompareCommand())
	rootCmd.AddCommand(a.CreateWatchCommand())

	rootCmd.AddCommand(a.CreateGuardCommand())
	rootCmd.AddCommand(a.CreateValidateCommand())

	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
