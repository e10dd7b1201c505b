// Package guard implements the guard command, which checks whether two
// checklists belong to the same benchmark before an upgrade.
package guard

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/output"
	"github.com/agentstation/checkmate/pkg/cklb"
)

// View is the printed guard decision.
type View struct {
	Old        string `json:"old" yaml:"old"`
	New        string `json:"new" yaml:"new"`
	OldID      string `json:"old_id" yaml:"old_id"`
	NewID      string `json:"new_id" yaml:"new_id"`
	OldVersion string `json:"old_version" yaml:"old_version"`
	NewVersion string `json:"new_version" yaml:"new_version"`
	Proceed    bool   `json:"proceed" yaml:"proceed"`
	Forced     bool   `json:"forced" yaml:"forced"`
	Downgrade  bool   `json:"downgrade" yaml:"downgrade"`
	Mismatch   string `json:"mismatch,omitempty" yaml:"mismatch,omitempty"`
}

// NewCommand creates the guard command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "guard OLD.cklb NEW.cklb",
		GroupID: "management",
		Short:   "Check that two checklists share a benchmark",
		Args:    cobra.ExactArgs(2),
		Long: `Guard compares the benchmark ids of two checklists the same way upgrade
does: case-insensitively, after trimming whitespace. It exits non-zero
when an upgrade would be refused, unless --force is given.

A version downgrade is reported but never blocks.`,
		Example: `  checkmate guard host1.cklb Windows_10_V2R2.cklb
  checkmate guard host1.cklb other.cklb --force -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := cklb.Load(args[0])
			if err != nil {
				return err
			}
			updated, err := cklb.Load(args[1])
			if err != nil {
				return err
			}

			res := checkmate.GuardCheck(old, updated, force)
			view := View{
				Old:        args[0],
				New:        args[1],
				OldID:      old.BenchmarkID(),
				NewID:      updated.BenchmarkID(),
				OldVersion: old.Version().String(),
				NewVersion: updated.Version().String(),
				Proceed:    res.Proceed,
				Forced:     res.Forced,
				Downgrade:  res.Downgrade,
			}
			if res.Warning != nil {
				view.Mismatch = res.Warning.String()
				app.Logger().Warn().Bool("forced", res.Forced).Msg(view.Mismatch)
			}

			if err := output.FormatAny(cmd.OutOrStdout(), view, globals.Parse(cmd)); err != nil {
				return err
			}
			return res.Err()
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Allow proceeding across a benchmark mismatch")
	return cmd
}
