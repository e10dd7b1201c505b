// Package globals provides shared flag structures and utilities for CLI commands.
package globals

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/checkmate/internal/matcher"
	"github.com/agentstation/checkmate/pkg/constants"
)

// Flags holds global common flags across all commands.
type Flags struct {
	Output  string
	Quiet   bool
	Verbose bool
}

// Parse extracts global flags from the command hierarchy.
// This is useful for subcommands that need to access global flags when
// they weren't passed the flags struct directly.
func Parse(cmd *cobra.Command) *Flags {
	root := cmd.Root()
	output, _ := root.PersistentFlags().GetString("format")
	quiet, _ := root.PersistentFlags().GetBool("quiet")
	verbose, _ := root.PersistentFlags().GetBool("verbose")

	return &Flags{
		Output:  output,
		Quiet:   quiet,
		Verbose: verbose,
	}
}

// FileFlags selects checklist files from directory and glob arguments.
type FileFlags struct {
	Include string
	Exclude []string
}

// AddFileFlags adds file selection flags to a command.
func AddFileFlags(cmd *cobra.Command) *FileFlags {
	flags := &FileFlags{}
	cmd.Flags().StringVar(&flags.Include, "include", "*"+constants.ChecklistExtension,
		"Glob for files picked up from directory arguments")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil,
		"Glob or regex of file names to skip (repeatable)")
	return flags
}

// Expand resolves file, directory and glob arguments to checklist paths.
func (f *FileFlags) Expand(args []string) ([]string, error) {
	include := f.Include
	if include == "" {
		include = "*" + constants.ChecklistExtension
	}
	return matcher.ExpandFiles(args, include, f.Exclude)
}
