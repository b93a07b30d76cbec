package truthdelta

import (
	"math"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// DefaultAlpha is the EMA smoothing factor.
const DefaultAlpha = 0.3

// Key identifies one smoothed confidence series.
type Key struct {
	Asset     string
	Component string
}

// Memory is the EMA state per key. Treat it as immutable: Reconcile and the
// reset helpers return a new Memory and never modify their receiver.
type Memory map[Key]float64

// Reset returns m without any series for asset.
func (m Memory) Reset(asset string) Memory {
	out := make(Memory, len(m))
	for k, v := range m {
		if k.Asset != asset {
			out[k] = v
		}
	}
	return out
}

// ResetComponent returns m without the series for k.
func (m Memory) ResetComponent(k Key) Memory {
	out := m.clone()
	delete(out, k)
	return out
}

func (m Memory) clone() Memory {
	out := make(Memory, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

var baseConfidence = map[types.Agreement]float64{
	types.AgreementSyncHealthy:   95,
	types.AgreementSyncFault:     90,
	types.AgreementFalsePositive: 60,
	types.AgreementFalseNegative: 75,
	types.AgreementUnknown:       30,
}

var colors = map[types.Agreement]string{
	types.AgreementSyncHealthy:   "#10b981",
	types.AgreementSyncFault:     "#ef4444",
	types.AgreementFalsePositive: "#f59e0b",
	types.AgreementFalseNegative: "#d946ef",
	types.AgreementUnknown:       "#64748b",
}

// BaseConfidence returns the fixed confidence of an agreement state.
func BaseConfidence(a types.Agreement) float64 {
	return baseConfidence[a]
}

// Color returns the display color of an agreement state. false_negative
// has its own hue, distinct from every other state.
func Color(a types.Agreement) string {
	return colors[a]
}

// Reconcile evaluates one component with the default alpha.
func Reconcile(mem Memory, k Key, diags []types.Diagnostic, logs []types.LogEntry) (types.TruthDelta, Memory) {
	return ReconcileAlpha(mem, k, diags, logs, DefaultAlpha)
}

// ReconcileAlpha evaluates one component and folds the result into the EMA
// series for k. The first evaluation of a key yields the base confidence.
func ReconcileAlpha(mem Memory, k Key, diags []types.Diagnostic, logs []types.LogEntry, alpha float64) (types.TruthDelta, Memory) {
	machine := MachineStatus(k.Component, diags)
	human := HumanStatus(k.Component, logs)
	agreement := Classify(machine, human)

	base := BaseConfidence(agreement)
	conf := base
	if prev, ok := mem[k]; ok {
		conf = alpha*base + (1-alpha)*prev
	}
	conf = clamp(conf, 0, 100)

	next := mem.clone()
	next[k] = conf

	return types.TruthDelta{
		Asset:         k.Asset,
		Component:     k.Component,
		MachineStatus: machine,
		HumanStatus:   human,
		Agreement:     agreement,
		Color:         Color(agreement),
		Confidence:    math.Round(conf*10) / 10,
	}, next
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
