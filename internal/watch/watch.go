// Package watch monitors a template directory and hands each new or
// changed checklist template to a handler once writes have settled.
// Upgraded checklists written back into the directory are not templates
// and are ignored.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/agentstation/checkmate/pkg/cklb"
	"github.com/agentstation/checkmate/pkg/constants"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/logging"
)

// Handler is called with the absolute path of a settled template.
type Handler func(ctx context.Context, templatePath string) error

// Watcher debounces filesystem events for checklist templates.
type Watcher struct {
	dir      string
	debounce time.Duration
	handler  Handler
	logger   *zerolog.Logger
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]time.Time

	hashes map[string]string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a template must be quiet before it is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for dir. The directory is created if missing.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.NewValidationError("handler", nil, "cannot be nil")
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapIO("watch", dir, err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, errors.WrapIO("watch", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		debounce: constants.WatchDebounce,
		handler:  handler,
		logger:   logging.NewNopLogger(),
		fsw:      fsw,
		pending:  make(map[string]time.Time),
		hashes:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := w.debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.logger.Info().
		Str("dir", w.dir).
		Dur("debounce", w.debounce).
		Msg("Watching for checklist templates")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.observe(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// Close stops the watcher; Run returns shortly after.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) observe(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !cklb.IsChecklistFile(event.Name) || isTemp(event.Name) || isUpgraded(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Template change detected")
}

// flush hands every template that has been quiet for the debounce
// window to the handler.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.pendingMu.Lock()
	var ready []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("Template vanished before processing")
			continue
		}
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])
		if w.hashes[path] == hash {
			continue
		}
		w.hashes[path] = hash

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error().Err(err).Str("template", path).Msg("Template handler failed")
			continue
		}
		w.logger.Info().Str("template", path).Msg("Template processed")
	}
}

// isUpgraded reports whether path is an upgrade output, which lands in the
// template directory when the output directory points there.
func isUpgraded(path string) bool {
	return strings.Contains(filepath.Base(path), constants.UpgradedSuffix)
}

func isTemp(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, constants.TempSuffix)
}
