package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// DefaultAnomalyLimit bounds the anomaly history kept across all assets.
const DefaultAnomalyLimit = 500

// maxLogsPerAsset bounds the maintenance log kept per asset.
const maxLogsPerAsset = 100

// Entry is an asset state together with the time it was last stored.
type Entry struct {
	State     types.AssetState
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory asset store keyed by asset ID.
type Store struct {
	mu        sync.RWMutex
	data      map[string]*Entry
	anomalies []types.DetectedAnomaly // newest last
	truth     map[string]map[string]types.TruthDelta
	logs      map[string][]types.LogEntry
	limit     int
	ttl       time.Duration
	now       func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL. A zero TTL disables eviction.
func New(ttl time.Duration) *Store {
	return &Store{
		data:  make(map[string]*Entry),
		truth: make(map[string]map[string]types.TruthDelta),
		logs:  make(map[string][]types.LogEntry),
		limit: DefaultAnomalyLimit,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores or replaces the state for st.ID.
func (s *Store) Put(st types.AssetState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[st.ID] = &Entry{State: st, UpdatedAt: s.now()}
}

// Get returns the entry for id. Use Live to tell whether it is stale.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// List returns every entry, stale ones included, ordered by asset ID.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State.ID < out[j].State.ID })
	return out
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Live reports whether e is within the TTL at the store's current time.
func (s *Store) Live(e Entry) bool {
	return s.ttl <= 0 || e.UpdatedAt.After(s.now().Add(-s.ttl))
}

// Count returns the number of entries held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// AddAnomaly records a detected anomaly, dropping the oldest beyond the
// history limit.
func (s *Store) AddAnomaly(a types.DetectedAnomaly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, a)
	if over := len(s.anomalies) - s.limit; over > 0 {
		s.anomalies = append([]types.DetectedAnomaly(nil), s.anomalies[over:]...)
	}
}

// Anomalies returns recorded anomalies newest first. An empty asset
// returns all streams.
func (s *Store) Anomalies(asset string) []types.DetectedAnomaly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.DetectedAnomaly, 0)
	for i := len(s.anomalies) - 1; i >= 0; i-- {
		if asset == "" || s.anomalies[i].Stream == asset {
			out = append(out, s.anomalies[i])
		}
	}
	return out
}

// PutTruth stores the latest truth delta for its asset and component.
func (s *Store) PutTruth(td types.TruthDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.truth[td.Asset]
	if !ok {
		m = make(map[string]types.TruthDelta)
		s.truth[td.Asset] = m
	}
	m[td.Component] = td
}

// Truth returns the asset's latest truth deltas ordered by component.
func (s *Store) Truth(asset string) []types.TruthDelta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TruthDelta, 0, len(s.truth[asset]))
	for _, td := range s.truth[asset] {
		out = append(out, td)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Component < out[j].Component })
	return out
}

// ClearTruth forgets the asset's truth deltas.
func (s *Store) ClearTruth(asset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.truth, asset)
}

// ClearTruthComponent forgets one component's truth delta.
func (s *Store) ClearTruthComponent(asset, component string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.truth[asset], component)
}

// Remove drops everything held for an asset that is no longer configured.
func (s *Store) Remove(asset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, asset)
	delete(s.truth, asset)
	delete(s.logs, asset)
}

// AddLog appends a maintenance log entry for asset, dropping the oldest
// beyond the per-asset limit.
func (s *Store) AddLog(asset string, e types.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := append(s.logs[asset], e)
	if over := len(l) - maxLogsPerAsset; over > 0 {
		l = append([]types.LogEntry(nil), l[over:]...)
	}
	s.logs[asset] = l
}

// Logs returns a copy of the asset's maintenance log, oldest first.
func (s *Store) Logs(asset string) []types.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]types.LogEntry, 0, len(s.logs[asset])), s.logs[asset]...)
}

// Evict drops the truth deltas of assets whose UpdatedAt is older than now
// minus TTL and returns the number of such stale assets. Asset states are
// never removed: structural wear accumulates for the life of the process.
func (s *Store) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	stale := 0
	for id, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.truth, id)
			stale++
		}
	}
	return stale
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// (minimum 1 second) and blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		<-ctx.Done()
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: stale assets", "count", n)
			}
		}
	}
}
