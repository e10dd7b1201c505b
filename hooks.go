package checkmate

import "sync"

// Hook function types for upgrade events
type (
	// UpgradedHook is called after a checklist is upgraded
	UpgradedHook func(result FileResult)

	// FailedHook is called when a checklist could not be upgraded
	FailedHook func(result FileResult)
)

// hooks manages event callbacks for file upgrades
type hooks struct {
	mu         sync.RWMutex
	onUpgraded []UpgradedHook
	onFailed   []FailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnUpgraded registers a callback for successful upgrades
func (h *hooks) OnUpgraded(fn UpgradedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpgraded = append(h.onUpgraded, fn)
}

// OnFailed registers a callback for failed upgrades
func (h *hooks) OnFailed(fn FailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailed = append(h.onFailed, fn)
}

// trigger calls the hooks matching each result, in result order
func (h *hooks) trigger(results []FileResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range results {
		if r.Err != nil {
			for _, hook := range h.onFailed {
				hook(r)
			}
			continue
		}
		for _, hook := range h.onUpgraded {
			hook(r)
		}
	}
}
