package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/structural"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Input is one driver tick for an asset.
type Input struct {
	State types.AssetState
	Event structural.Event

	// Telemetry is appended to the asset's anomaly window. When nil a
	// snapshot is derived from the recomputed state.
	Telemetry *types.TelemetrySnapshot

	Diagnostics []types.Diagnostic
	Logs        []types.LogEntry
}

// Output is the result of Process.
type Output struct {
	State   types.AssetState
	Anomaly *types.DetectedAnomaly
	Truth   []types.TruthDelta
}

// Process recomputes the asset, feeds its telemetry stream and reconciles
// every component named in the diagnostics or log entries. A panic in
// anomaly detection or reconciliation is logged and the Output still
// carries the recomputed state.
func (e *Engine) Process(in Input) Output {
	a := e.assetFor(in.State.ID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return e.process(in)
}

func (e *Engine) process(in Input) Output {
	out := Output{State: e.recompute(in.State, in.Event)}
	id := out.State.ID

	snap := in.Telemetry
	if snap == nil {
		s := Snapshot(out.State, e.now())
		snap = &s
	}
	e.guard(id, "anomaly", func() {
		out.Anomaly = e.Ingest(id, *snap)
	})

	for _, c := range Components(in.Diagnostics, in.Logs) {
		e.guard(id, "reconcile", func() {
			out.Truth = append(out.Truth, e.Reconcile(id, c, in.Diagnostics, in.Logs))
		})
	}
	return out
}

// guard runs fn, recovering and logging a panic.
func (e *Engine) guard(asset, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("engine: recovered panic",
				"asset", asset, "step", step, "err", fmt.Errorf("%v", r))
		}
	}()
	fn()
}

// Snapshot derives a telemetry sample from a recomputed state. Efficiency
// is reported in percent.
func Snapshot(s types.AssetState, at time.Time) types.TelemetrySnapshot {
	eff := s.Hydraulic.Efficiency
	if eff > 0 && eff <= 1 {
		eff *= 100
	}
	snap := types.TelemetrySnapshot{
		Timestamp:    at,
		Efficiency:   eff,
		VibrationMMS: s.Mechanical.Vibration(),
		BearingTempC: s.Mechanical.BearingTempC,
		FlowM3S:      s.Hydraulic.FlowM3S,
		HeadM:        s.Hydraulic.HeadM,
	}
	if s.Physics != nil {
		snap.PowerMW = numeric.Float(s.Physics.PowerMW)
	}
	return snap
}

// Components returns the distinct, sorted component names carried by
// diags and logs. Entries without a component tag are ignored.
func Components(diags []types.Diagnostic, logs []types.LogEntry) []string {
	seen := make(map[string]bool)
	for _, d := range diags {
		if d.Component != "" {
			seen[d.Component] = true
		}
	}
	for _, l := range logs {
		if l.Component != "" {
			seen[l.Component] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
