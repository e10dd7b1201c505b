// Package validate implements the validate command, which loads
// checklists and optionally imports the valid ones into a directory.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/output"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var importDir string
	var files *globals.FileFlags

	cmd := &cobra.Command{
		Use:     "validate FILE...",
		GroupID: "management",
		Short:   "Validate checklists and optionally import them",
		Args:    cobra.MinimumNArgs(1),
		Long: `Validate parses each checklist and reports its benchmark, version and
status counts. Malformed files are reported with the offending field and
do not stop the others from being checked.

With --import-dir, every valid checklist is also saved into that directory.`,
		Example: `  checkmate validate host1.cklb host2.cklb
  checkmate validate ./incoming --import-dir user_docs/cklb`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := files.Expand(args)
			if err != nil {
				return err
			}

			var statuses []checkmate.FileStatus
			if importDir != "" {
				statuses = checkmate.ImportFiles(paths, importDir)
			} else {
				statuses = checkmate.ValidateFiles(paths)
			}

			failed := 0
			for _, s := range statuses {
				if !s.OK() {
					failed++
					app.Logger().Debug().Err(s.Err).Str("path", s.Path).Msg("Invalid checklist")
				}
			}

			if err := output.FormatStatuses(cmd.OutOrStdout(), statuses, globals.Parse(cmd)); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checklists are invalid", failed, len(statuses))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importDir, "import-dir", "", "Save valid checklists into this directory")
	files = globals.AddFileFlags(cmd)
	return cmd
}
