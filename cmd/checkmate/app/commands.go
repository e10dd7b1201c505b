package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate/cmd/checkmate/cmd/compare"
	"github.com/agentstation/checkmate/cmd/checkmate/cmd/guard"
	"github.com/agentstation/checkmate/cmd/checkmate/cmd/upgrade"
	"github.com/agentstation/checkmate/cmd/checkmate/cmd/validate"
	"github.com/agentstation/checkmate/cmd/checkmate/cmd/watch"
)

// CreateUpgradeCommand creates the upgrade command with app dependencies.
func (a *App) CreateUpgradeCommand() *cobra.Command {
	return upgrade.NewCommand(a)
}

// CreateCompareCommand creates the compare command with app dependencies.
func (a *App) CreateCompareCommand() *cobra.Command {
	return compare.NewCommand(a)
}

// CreateWatchCommand creates the watch command with app dependencies.
func (a *App) CreateWatchCommand() *cobra.Command {
	return watch.NewCommand(a)
}

// CreateGuardCommand creates the guard command with app dependencies.
func (a *App) CreateGuardCommand() *cobra.Command {
	return guard.NewCommand(a)
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("checkmate %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
