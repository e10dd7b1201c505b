package constants_test

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/agentstation/checkmate/pkg/constants"
)

// Example demonstrates building the output name of an upgraded checklist.
func Example() {
	old := "artifacts/web01.cklb"
	stem := filepath.Base(old[:len(old)-len(filepath.Ext(old))])
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Format(constants.TimeFormatFilename)

	fmt.Println(stem + constants.UpgradedSuffix + date + constants.ChecklistExtension)
	// Output: web01_upgraded_20250401.cklb
}

// Example_permissions shows the permission constants in octal.
func Example_permissions() {
	fmt.Printf("dir %o, file %o\n", constants.DirPermissions, constants.FilePermissions)
	// Output: dir 755, file 644
}
