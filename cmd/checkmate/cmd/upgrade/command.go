// Package upgrade implements the upgrade command, which carries
// evaluations from completed checklists onto a new benchmark template.
package upgrade

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/output"
	"github.com/agentstation/checkmate/pkg/reconciler"
)

// Flags holds the upgrade command flags.
type Flags struct {
	Template    string
	OutputDir   string
	Force       bool
	DryRun      bool
	Concurrency int
	Strategy    string
	Files       *globals.FileFlags
}

// NewCommand creates the upgrade command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "upgrade --template NEW.cklb OLD... ",
		GroupID: "core",
		Short:   "Carry evaluations forward onto a new benchmark version",
		Args:    cobra.MinimumNArgs(1),
		Long: `Upgrade reconciles each completed checklist with a freshly generated
template for a newer benchmark release.

For every rule in the template:
• Rules present in the old checklist keep their status, comments,
  finding details and severity overrides
• Rules new in this release start as not_reviewed and are flagged is_new
• Rules dropped from the benchmark are listed in the report only

Each upgraded checklist is written as <name>_upgraded_<YYYYMMDD>.cklb.
A checklist that fails to load or merge is reported and skipped; the
others are still upgraded.`,
		Example: `  checkmate upgrade -t Windows_10_V2R2.cklb host1.cklb host2.cklb
  checkmate upgrade -t new.cklb ./completed --exclude '*_upgraded_*'
  checkmate upgrade -t new.cklb 'old/**/*.cklb' --dry-run -o json
  checkmate upgrade -t other.cklb host1.cklb --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.Template, "template", "t", "", "New benchmark checklist to upgrade onto (required)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Directory for upgraded checklists (overrides output_dir)")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "Merge even when benchmark ids differ")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Reconcile and report without writing files")
	cmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "j", 0, "Checklists reconciled in parallel (overrides concurrency)")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", "", "Carry strategy: carry-forward, review-revised")
	_ = cmd.MarkFlagRequired("template")
	flags.Files = globals.AddFileFlags(cmd)

	return cmd
}

// Execute runs the upgrade and prints one row per checklist.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, args []string) error {
	paths, err := flags.Files.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no checklists matched %v", args)
	}

	opts, err := Options(cmd, app, flags)
	if err != nil {
		return err
	}

	app.Logger().Debug().Int("checklists", len(paths)).Str("template", flags.Template).Msg("Upgrading")
	results, err := checkmate.UpgradeFiles(cmd.Context(), paths, flags.Template, opts...)
	if err != nil {
		return err
	}

	if err := output.FormatUpgrades(cmd.OutOrStdout(), results, globals.Parse(cmd)); err != nil {
		return err
	}
	if failed := checkmate.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d checklists failed to upgrade", len(failed), len(results))
	}
	return nil
}

// Options layers explicitly set flags over the configured options.
func Options(cmd *cobra.Command, app application.Application, flags *Flags) ([]checkmate.Option, error) {
	opts := app.Options()
	if cmd.Flags().Changed("output-dir") {
		opts = append(opts, checkmate.WithOutputDir(flags.OutputDir))
	}
	if cmd.Flags().Changed("force") {
		opts = append(opts, checkmate.WithForce(flags.Force))
	}
	if cmd.Flags().Changed("concurrency") {
		opts = append(opts, checkmate.WithConcurrency(flags.Concurrency))
	}
	if cmd.Flags().Changed("strategy") {
		s, ok := reconciler.ParseStrategy(flags.Strategy)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q: must be carry-forward or review-revised", flags.Strategy)
		}
		opts = append(opts, checkmate.WithStrategy(s))
	}
	if flags.DryRun {
		opts = append(opts, checkmate.WithDryRun(true))
	}
	return opts, nil
}
