package truthdelta

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// DefaultMaxAssets bounds the number of assets a Tracker remembers.
const DefaultMaxAssets = 1024

// Tracker keeps one Memory per asset in a bounded LRU. The least recently
// reconciled asset is forgotten first; its next evaluation starts from base
// confidence again.
type Tracker struct {
	mu    sync.Mutex
	alpha float64
	cache *lru.Cache[string, Memory]
}

// NewTracker returns a Tracker holding at most maxAssets assets.
func NewTracker(maxAssets int, alpha float64) (*Tracker, error) {
	if maxAssets <= 0 {
		maxAssets = DefaultMaxAssets
	}
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("truthdelta: alpha must be within (0, 1], got %v", alpha)
	}
	c, err := lru.New[string, Memory](maxAssets)
	if err != nil {
		return nil, fmt.Errorf("truthdelta: create cache: %w", err)
	}
	return &Tracker{alpha: alpha, cache: c}, nil
}

// Reconcile evaluates one component of asset and stores the new EMA state.
func (t *Tracker) Reconcile(asset, component string, diags []types.Diagnostic, logs []types.LogEntry) types.TruthDelta {
	t.mu.Lock()
	defer t.mu.Unlock()

	mem, _ := t.cache.Get(asset)
	td, next := ReconcileAlpha(mem, Key{Asset: asset, Component: component}, diags, logs, t.alpha)
	t.cache.Add(asset, next)
	return td
}

// Reset forgets every series for asset, e.g. after calibration or an
// overhaul.
func (t *Tracker) Reset(asset string) {
	t.mu.Lock()
	t.cache.Remove(asset)
	t.mu.Unlock()
}

// ResetComponent forgets one series.
func (t *Tracker) ResetComponent(asset, component string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if mem, ok := t.cache.Get(asset); ok {
		t.cache.Add(asset, mem.ResetComponent(Key{Asset: asset, Component: component}))
	}
}

// Len returns the number of assets currently tracked.
func (t *Tracker) Len() int {
	return t.cache.Len()
}
