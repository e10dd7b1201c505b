// Package watch implements the watch command, which upgrades a set of
// completed checklists whenever a new template lands in a directory.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/cmd/checkmate/cmd/upgrade"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/output"
	templatewatch "github.com/agentstation/checkmate/internal/watch"
	"github.com/agentstation/checkmate/pkg/constants"
)

// NewCommand creates the watch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &upgrade.Flags{}
	var dir string
	var debounce string

	cmd := &cobra.Command{
		Use:     "watch --templates DIR OLD...",
		GroupID: "core",
		Short:   "Upgrade checklists each time a new template appears",
		Args:    cobra.MinimumNArgs(1),
		Long: `Watch monitors a template directory. When a .cklb template is written
there and has been quiet for the debounce window, every old checklist
matched by the arguments is upgraded onto it, exactly as the upgrade
command would. The arguments are re-expanded on every run. Upgraded
checklists written into the template directory are never taken for
templates.

Stop with Ctrl-C.`,
		Example: `  checkmate watch --templates ./templates ./completed --exclude '*_upgraded_*'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := upgrade.Options(cmd, app, flags)
			if err != nil {
				return err
			}
			d := constants.WatchDebounce
			if debounce != "" {
				if d, err = parseDuration(debounce); err != nil {
					return err
				}
			}

			handler := func(ctx context.Context, template string) error {
				paths, err := flags.Files.Expand(args)
				if err != nil {
					return err
				}
				results, err := checkmate.UpgradeFiles(ctx, paths, template, opts...)
				if err != nil {
					return err
				}
				if err := output.FormatUpgrades(cmd.OutOrStdout(), results, globals.Parse(cmd)); err != nil {
					return err
				}
				return checkmate.Errors(results)
			}

			w, err := templatewatch.New(dir, handler, templatewatch.WithDebounce(d), templatewatch.WithLogger(app.Logger()))
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&dir, "templates", "", "Directory to watch for new templates (required)")
	cmd.Flags().StringVar(&debounce, "debounce", "", "Quiet period before a template is processed (default 500ms)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Directory for upgraded checklists (overrides output_dir)")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "Merge even when benchmark ids differ")
	cmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "j", 0, "Checklists reconciled in parallel (overrides concurrency)")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", "", "Carry strategy: carry-forward, review-revised")
	_ = cmd.MarkFlagRequired("templates")
	flags.Files = globals.AddFileFlags(cmd)

	return cmd
}

func parseDuration(s string) (d time.Duration, err error) {
	d, err = time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid debounce %q: must be a positive duration like 500ms", s)
	}
	return d, nil
}
