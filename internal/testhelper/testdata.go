package testhelper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/cklb"
	"github.com/agentstation/checkmate/pkg/constants"
)

// LoadTestdata loads a file from the caller's testdata directory.
func LoadTestdata(t *testing.T, filename string) []byte {
	t.Helper()

	testdataPath := filepath.Join("testdata", filename)

	data, err := os.ReadFile(testdataPath) //nolint:gosec // Test file paths are controlled
	if err != nil {
		t.Fatalf("Failed to load testdata file %s: %v", testdataPath, err)
	}

	return data
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteChecklist saves b as dir/name and returns the path.
func WriteChecklist(t *testing.T, dir, name string, b *checklist.Bundle) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := cklb.Save(b, path); err != nil {
		t.Fatalf("Failed to save checklist %s: %v", path, err)
	}
	return path
}

// LoadChecklist loads a checklist or fails the test.
func LoadChecklist(t *testing.T, path string) *checklist.Bundle {
	t.Helper()

	b, err := cklb.Load(path)
	if err != nil {
		t.Fatalf("Failed to load checklist %s: %v", path, err)
	}
	return b
}
