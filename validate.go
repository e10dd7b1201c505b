package checkmate

import (
	"path/filepath"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/cklb"
	"github.com/agentstation/checkmate/pkg/errors"
)

// FileStatus summarizes one checklist that was validated or imported.
type FileStatus struct {
	Path        string
	BenchmarkID string
	Version     checklist.Version
	Rules       int
	Statuses    map[checklist.Status]int
	// ImportedPath is set by ImportFiles on success.
	ImportedPath string
	Err          error
}

// OK reports whether the file is a valid checklist.
func (s FileStatus) OK() bool {
	return s.Err == nil
}

// ValidateFiles loads every path and reports each file's outcome
// independently.
func ValidateFiles(paths []string) []FileStatus {
	out := make([]FileStatus, len(paths))
	for i, path := range paths {
		out[i], _ = validateFile(path)
	}
	return out
}

// ImportFiles validates every path and copies each valid checklist into
// destDir under its original file name. Files are re-encoded, so unknown
// keys survive but formatting is normalized.
func ImportFiles(paths []string, destDir string) []FileStatus {
	out := make([]FileStatus, len(paths))
	for i, path := range paths {
		status, b := validateFile(path)
		if status.Err == nil {
			dest := filepath.Join(destDir, filepath.Base(path))
			if err := cklb.Save(b, dest); err != nil {
				status.Err = err
			} else {
				status.ImportedPath = dest
			}
		}
		out[i] = status
	}
	return out
}

func validateFile(path string) (FileStatus, *checklist.Bundle) {
	status := FileStatus{Path: path}
	if !cklb.IsChecklistFile(path) {
		status.Err = errors.NewValidationError("path", path, "not a .cklb file")
		return status, nil
	}
	b, err := cklb.Load(path)
	if err != nil {
		status.Err = err
		return status, nil
	}
	status.BenchmarkID = b.BenchmarkID()
	status.Version = b.Version()
	status.Rules = b.Len()
	status.Statuses = b.StatusCounts()
	return status, b
}
