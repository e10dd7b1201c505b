// Package application provides the application interface for checkmate commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be exercised with application.Mock in tests:
//
//	mock := &application.Mock{
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := upgrade.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/metrics"
)

// Application provides what commands need from the running CLI.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Options returns the library options derived from configuration
	// (output dir, force, concurrency, logger, metrics).
	Options() []checkmate.Option

	// Metrics returns the shared outcome recorder, or nil when metrics
	// are not exported.
	Metrics() *metrics.Recorder

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
