package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hydroguard/hydroguard/internal/anomaly"
	"github.com/hydroguard/hydroguard/internal/financial"
	"github.com/hydroguard/hydroguard/internal/physics"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/internal/risk"
	"github.com/hydroguard/hydroguard/internal/structural"
	"github.com/hydroguard/hydroguard/internal/truthdelta"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// uptimeWindow is the number of recent telemetry fetch outcomes tracked per
// asset for availability.
const uptimeWindow = 20

// Config holds everything the pipeline stages read.
type Config struct {
	// MarketPrice overrides the profile's revenue per MWh when > 0.
	MarketPrice    float64
	Maintenance    financial.MaintenanceOptions
	Risk           risk.Thresholds
	Structural     structural.Config
	Anomaly        anomaly.Config
	TruthAlpha     float64
	TruthMaxAssets int
}

// DefaultConfig returns the built-in pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Risk:           risk.DefaultThresholds(),
		Structural:     structural.DefaultConfig(),
		Anomaly:        anomaly.DefaultConfig(),
		TruthAlpha:     truthdelta.DefaultAlpha,
		TruthMaxAssets: truthdelta.DefaultMaxAssets,
	}
}

// Observer is notified of every pipeline outcome. Implementations must be
// safe for concurrent use.
type Observer interface {
	StateComputed(types.AssetState)
	AnomalyDetected(types.DetectedAnomaly)
	TruthReconciled(types.TruthDelta)
}

type nopObserver struct{}

func (nopObserver) StateComputed(types.AssetState)        {}
func (nopObserver) AnomalyDetected(types.DetectedAnomaly) {}
func (nopObserver) TruthReconciled(types.TruthDelta)      {}

// Engine evaluates assets. All exported methods are safe for concurrent
// use.
type Engine struct {
	profiles   *profile.Registry
	structural *structural.Model
	detector   *anomaly.Detector
	truth      *truthdelta.Tracker
	obs        Observer
	now        func() time.Time

	settingsMu  sync.RWMutex
	thresholds  risk.Thresholds
	marketPrice float64
	maintenance financial.MaintenanceOptions

	mu     sync.Mutex
	assets map[string]*assetState
}

// assetState serializes evaluations of one asset and keeps its telemetry
// availability history.
type assetState struct {
	mu      sync.Mutex
	history []bool // newest last
}

// New returns an Engine. A nil registry uses the built-in profiles.
func New(cfg Config, profiles *profile.Registry) (*Engine, error) {
	if err := cfg.Risk.Validate(); err != nil {
		return nil, fmt.Errorf("engine: risk: %w", err)
	}
	if err := cfg.Structural.Validate(); err != nil {
		return nil, fmt.Errorf("engine: structural: %w", err)
	}
	if err := cfg.Anomaly.Validate(); err != nil {
		return nil, fmt.Errorf("engine: anomaly: %w", err)
	}
	if err := cfg.Maintenance.Validate(); err != nil {
		return nil, fmt.Errorf("engine: maintenance: %w", err)
	}
	truth, err := truthdelta.NewTracker(cfg.TruthMaxAssets, cfg.TruthAlpha)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if profiles == nil {
		profiles = profile.NewRegistry()
	}
	return &Engine{
		thresholds:  cfg.Risk,
		marketPrice: cfg.MarketPrice,
		maintenance: cfg.Maintenance,
		profiles:    profiles,
		structural:  structural.New(cfg.Structural),
		detector:    anomaly.New(cfg.Anomaly),
		truth:       truth,
		obs:         nopObserver{},
		now:         time.Now,
		assets:      make(map[string]*assetState),
	}, nil
}

// SetObserver installs o. It must be called before the engine is shared.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	e.obs = o
}

// Profiles returns the registry the engine resolves turbine types against.
func (e *Engine) Profiles() *profile.Registry { return e.profiles }

// Reconfigure swaps the risk thresholds, market price and maintenance
// calibration used by later recomputations. The other fields of cfg only
// take effect through New. Invalid settings are rejected and the previous
// ones stay in effect.
func (e *Engine) Reconfigure(cfg Config) error {
	if err := cfg.Risk.Validate(); err != nil {
		return fmt.Errorf("engine: risk: %w", err)
	}
	if err := cfg.Maintenance.Validate(); err != nil {
		return fmt.Errorf("engine: maintenance: %w", err)
	}
	e.settingsMu.Lock()
	defer e.settingsMu.Unlock()
	e.thresholds = cfg.Risk
	e.marketPrice = cfg.MarketPrice
	e.maintenance = cfg.Maintenance
	return nil
}

// Thresholds returns the risk thresholds in effect.
func (e *Engine) Thresholds() risk.Thresholds {
	e.settingsMu.RLock()
	defer e.settingsMu.RUnlock()
	return e.thresholds
}

func (e *Engine) settings() (risk.Thresholds, float64, financial.MaintenanceOptions) {
	e.settingsMu.RLock()
	defer e.settingsMu.RUnlock()
	return e.thresholds, e.marketPrice, e.maintenance
}

// Recompute returns a copy of state with Physics, Risk, Structural and
// Financials replaced. ev carries a scenario event for the structural
// model; use the zero Event for a plain tick.
func (e *Engine) Recompute(state types.AssetState, ev structural.Event) types.AssetState {
	a := e.assetFor(state.ID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return e.recompute(state, ev)
}

func (e *Engine) recompute(state types.AssetState, ev structural.Event) types.AssetState {
	prof := e.profiles.Lookup(state.TurbineType)
	th, price, maint := e.settings()
	th = th.ForTurbine(prof.Thresholds.VibrationMax)

	p := physics.Compute(physics.FromAsset(state, prof, th))
	assessment := risk.Classify(p, state.Mechanical, state.Operational, th)

	if ev.GridFrequencyHz == 0 {
		ev.GridFrequencyHz = state.Site.GridFrequencyHz
	}
	next := state
	next.Physics = &p
	next.Risk = assessment
	next.Structural = e.structural.Advance(state.Structural, state.Mechanical, ev)

	fin := financial.Impact(financial.Input{
		State:       next,
		Physics:     p,
		Risk:        assessment,
		Profile:     prof,
		MarketPrice: price,
		Maintenance: maint,
	})
	next.Financials = &fin
	next.UpdatedAt = e.now()

	e.obs.StateComputed(next)
	return next
}

// Ingest appends snap to the asset's anomaly window and returns the first
// anomaly that fires, or nil.
func (e *Engine) Ingest(asset string, snap types.TelemetrySnapshot) *types.DetectedAnomaly {
	a := e.detector.Ingest(asset, snap)
	if a != nil {
		slog.Info("engine: anomaly detected",
			"asset", asset, "type", a.Type, "severity", a.Severity, "probability", a.Probability)
		e.obs.AnomalyDetected(*a)
	}
	return a
}

// Anomalies runs every detector over the asset's current window.
func (e *Engine) Anomalies(asset string) []types.DetectedAnomaly {
	return e.detector.Scan(asset)
}

// Streams lists the assets with an anomaly window, sorted.
func (e *Engine) Streams() []string {
	return e.detector.Streams()
}

// SetBaseline sets the anomaly baseline for an asset's stream.
func (e *Engine) SetBaseline(asset string, efficiency, powerMW float64) {
	e.detector.SetBaseline(asset, efficiency, powerMW)
}

// SeedBaseline sets the anomaly baseline from an asset's description.
// Efficiency given as a fraction is converted to percent; a missing
// efficiency keeps the detector's default. A missing baseline power falls
// back to the turbine type's nominal output, so silent-loss detection
// always has a reference.
func (e *Engine) SeedBaseline(st types.AssetState) {
	eff := st.Hydraulic.Efficiency
	switch {
	case eff <= 0:
		eff = e.detector.Status(st.ID).BaselineEfficiency
	case eff <= 1:
		eff *= 100
	}
	power := st.Hydraulic.BaselinePowerMW
	if power <= 0 {
		power = e.profiles.Lookup(st.TurbineType).Coefficients.NominalPowerMW
	}
	e.detector.SetBaseline(st.ID, eff, power)
}

// StreamStatus reports the asset's anomaly window.
func (e *Engine) StreamStatus(asset string) anomaly.Status {
	return e.detector.Status(asset)
}

// Reconcile compares machine and human views of one component.
func (e *Engine) Reconcile(asset, component string, diags []types.Diagnostic, logs []types.LogEntry) types.TruthDelta {
	td := e.truth.Reconcile(asset, component, diags, logs)
	e.obs.TruthReconciled(td)
	return td
}

// ResetStructural returns state as after a full overhaul: pristine
// structural metrics and zero hours since overhaul.
func (e *Engine) ResetStructural(state types.AssetState) types.AssetState {
	a := e.assetFor(state.ID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return e.resetStructural(state)
}

func (e *Engine) resetStructural(state types.AssetState) types.AssetState {
	next := state
	next.Structural = e.structural.Reset()
	next.Operational.HoursSinceOverhaul = 0
	next.UpdatedAt = e.now()
	return next
}

// Op exposes the per-asset evaluation steps to a function already holding
// the asset's lock. It is only valid inside the Update call that created
// it.
type Op struct{ e *Engine }

// Process is Engine.Process without taking the asset lock.
func (o Op) Process(in Input) Output { return o.e.process(in) }

// ResetStructural is Engine.ResetStructural without taking the asset lock.
func (o Op) ResetStructural(state types.AssetState) types.AssetState {
	return o.e.resetStructural(state)
}

// Update runs fn while holding the evaluation lock of asset id. Callers
// that load an asset state, evaluate it and store the result do all three
// inside fn so that concurrent updates of the same asset cannot overwrite
// each other.
func (e *Engine) Update(id string, fn func(op Op)) {
	a := e.assetFor(id)
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(Op{e: e})
}

// ResetTruth forgets the asset's reconciliation memory.
func (e *Engine) ResetTruth(asset string) {
	e.truth.Reset(asset)
}

// ResetTruthComponent forgets the reconciliation memory of one component.
func (e *Engine) ResetTruthComponent(asset, component string) {
	e.truth.ResetComponent(asset, component)
}

// ResetStream discards the asset's anomaly window. The baseline is kept.
func (e *Engine) ResetStream(asset string) {
	e.detector.Reset(asset)
}

// RecordFetch records the outcome of one telemetry fetch for asset.
func (e *Engine) RecordFetch(asset string, ok bool) {
	a := e.assetFor(asset)
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) >= uptimeWindow {
		a.history = a.history[1:]
	}
	a.history = append(a.history, ok)
}

// Availability returns the percentage of recent fetches that succeeded,
// or 100 before the first one.
func (e *Engine) Availability(asset string) float64 {
	a := e.assetFor(asset)
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) == 0 {
		return 100
	}
	var ok int
	for _, s := range a.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(a.history)) * 100
}

func (e *Engine) assetFor(id string) *assetState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.assets[id]; ok {
		return a
	}
	a := &assetState{}
	e.assets[id] = a
	return a
}
