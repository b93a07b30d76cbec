// Package truthdelta reconciles machine diagnostics against human
// maintenance notes for one sub-component.
//
// Each side resolves to healthy, warning, critical or unknown. The pair maps
// onto an agreement lattice (sync_healthy, sync_fault, false_positive,
// false_negative, unknown), each with a base confidence. Confidence is
// smoothed with an exponential moving average keyed per (asset, component).
//
// Smoothing state is explicit. Reconcile takes a Memory and returns a new
// one; Tracker holds a bounded Memory per asset for long-running services.
package truthdelta
