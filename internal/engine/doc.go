// Package engine drives the per-asset pipeline.
//
// Recompute runs Physics → Risk → Structural → Financial for one asset
// snapshot. Process adds anomaly detection on the asset's telemetry stream
// and truth-delta reconciliation for every component named by the caller's
// diagnostics or shift-log entries. Evaluations of the same asset are
// serialized; different assets proceed in parallel. Update extends that
// lock over a caller's own read-modify-write of the asset.
//
// Risk thresholds and the market price can be swapped at runtime with
// Reconfigure. Each recomputation narrows the vibration zones to the
// turbine type's own limit.
package engine
