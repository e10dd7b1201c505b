package checkmate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/cklb"
	"github.com/agentstation/checkmate/pkg/constants"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/logging"
	"github.com/agentstation/checkmate/pkg/reconciler"
)

// FileResult is the outcome of upgrading one checklist file.
type FileResult struct {
	// Path is the old checklist's path as given.
	Path string
	// OutputPath is where the upgraded checklist was (or, in a dry run,
	// would be) written. Empty on failure.
	OutputPath string
	// Result is nil when the file could not be loaded.
	Result *reconciler.Result
	// Err is the failure for this file, if any.
	Err error
}

// OK reports whether the file was upgraded.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// UpgradeFiles loads every old checklist and the template, reconciles them
// and writes each merged checklist to the output directory as
// <stem>_upgraded_<YYYYMMDD>.cklb. Old checklists that share a stem, such
// as host.cklb in two directories, get _2, _3 and so on appended in input
// order so that no upgrade overwrites another. A file that fails to load, reconcile or
// save fails only its own slot. The returned error is set only when the
// template cannot be loaded or an option is invalid.
func UpgradeFiles(ctx context.Context, oldPaths []string, templatePath string, opts ...Option) ([]FileResult, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.logger != nil {
		ctx = logging.WithLogger(ctx, cfg.logger)
	}
	ctx = logging.WithOperation(ctx, "upgrade")

	template, err := cklb.Load(templatePath)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithBenchmark(ctx, template.BenchmarkID())
	logger := logging.FromContext(ctx)

	rec, err := reconciler.New(cfg.reconcilerOptions()...)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(oldPaths))
	olds := make([]*checklist.Bundle, 0, len(oldPaths))
	slots := make([]int, 0, len(oldPaths))
	for i, path := range oldPaths {
		results[i].Path = path
		b, err := cklb.Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping checklist that failed to load")
			results[i].Err = err
			continue
		}
		olds = append(olds, b)
		slots = append(slots, i)
	}

	batch := rec.Batch(ctx, olds, template)
	names := outputNames(oldPaths, cfg.now())
	for j, res := range batch {
		i := slots[j]
		results[i].Result = &batch[j]
		if res.Err != nil {
			results[i].Err = res.Err
			continue
		}

		out := filepath.Join(cfg.outputDir, names[i])
		if !cfg.dryRun {
			if err := cklb.Save(res.Bundle, out); err != nil {
				results[i].Err = err
				continue
			}
		}
		results[i].OutputPath = out
		logger.Info().
			Str("path", results[i].Path).
			Str("output", out).
			Bool("dry_run", cfg.dryRun).
			Msg(res.Report.Summary())
	}

	cfg.hooks.trigger(results)
	return results, nil
}

// OutputName returns the file name an upgraded copy of path is saved under.
func OutputName(path string, date time.Time) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + constants.UpgradedSuffix + date.Format(constants.TimeFormatFilename) + constants.ChecklistExtension
}

// outputNames returns the output file name for each path. Names are
// compared case-insensitively since output directories may live on
// case-insensitive filesystems.
func outputNames(paths []string, date time.Time) []string {
	names := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, path := range paths {
		name := OutputName(path, date)
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// Failed returns the results that carry an error.
func Failed(results []FileResult) []FileResult {
	var out []FileResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Errors joins the errors of all failed results, or returns nil.
func Errors(results []FileResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
