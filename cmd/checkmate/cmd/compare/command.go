// Package compare implements the compare command, which lists rule
// differences between checklists without merging anything.
package compare

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/output"
)

// NewCommand creates the compare command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var against string
	var files *globals.FileFlags

	cmd := &cobra.Command{
		Use:     "compare --against NEW.cklb OLD...",
		GroupID: "core",
		Short:   "Show added, removed and common rules between checklists",
		Args:    cobra.MinimumNArgs(1),
		Long: `Compare matches the rules of each old checklist against a newer one
by group id and reports which rules were added, removed or kept.
Benchmark id mismatches are reported as warnings; nothing is written.

Use -o wide to list the added and removed rule ids.`,
		Example: `  checkmate compare --against Windows_10_V2R2.cklb host1.cklb
  checkmate compare -a new.cklb ./completed -o wide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := files.Expand(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no checklists matched %v", args)
			}

			comparisons, err := checkmate.CompareFiles(cmd.Context(), paths, against)
			if err != nil {
				return err
			}
			for _, c := range comparisons {
				if c.Guard.Warning != nil {
					app.Logger().Warn().Str("path", c.OldPath).Msg(c.Guard.Warning.String())
				}
			}
			return output.FormatComparisons(cmd.OutOrStdout(), comparisons, globals.Parse(cmd))
		},
	}

	cmd.Flags().StringVarP(&against, "against", "a", "", "Newer checklist to compare with (required)")
	_ = cmd.MarkFlagRequired("against")
	files = globals.AddFileFlags(cmd)

	return cmd
}
