// Package constants provides shared constants used throughout the checkmate codebase.
// This includes file permissions, limits, extensions and naming formats that
// should be consistent between the library and the CLI.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultConcurrency is the number of checklist pairs reconciled in parallel
	DefaultConcurrency = 4

	// MaxConcurrency caps the reconcile worker pool
	MaxConcurrency = 64

	// MaxTitleWidth is the widest rule title printed in table output
	MaxTitleWidth = 70
)

// Timeout constants
const (
	// WatchDebounce is how long the template watcher waits for writes to settle
	WatchDebounce = 500 * time.Millisecond

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File naming constants
const (
	// ChecklistExtension is the extension of persisted checklist bundles
	ChecklistExtension = ".cklb"

	// UpgradedSuffix is inserted between the old checklist stem and the date
	UpgradedSuffix = "_upgraded_"

	// TimeFormatFilename is the date format used in generated filenames
	TimeFormatFilename = "20060102"

	// TempSuffix marks in-flight atomic writes
	TempSuffix = ".tmp"
)

// Path constants
const (
	// DefaultOutputDir is where upgraded checklists are written by default
	DefaultOutputDir = "user_docs/cklb_updated"

	// DefaultConfigName is the config file basename searched in $HOME and .
	DefaultConfigName = ".checkmate"

	// EnvPrefix is the prefix for environment-variable configuration
	EnvPrefix = "CHECKMATE"
)

// CKLB document defaults
const (
	// CKLBVersion is the checklist document schema version written on save
	CKLBVersion = "1.0"

	// DefaultTargetType is the target_data.target_type of generated checklists
	DefaultTargetType = "host"
)
