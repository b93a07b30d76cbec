// Package anomaly runs fixed sliding-window detectors over telemetry
// streams.
//
// Each stream keeps a bounded FIFO window of TelemetrySnapshots and its own
// efficiency and power baseline. Ingest appends one sample and evaluates the
// detectors in priority order: silent loss, cavitation, thermal runaway,
// efficiency drift. Only the first that fires is returned; Scan reports every
// detector that fires on the current window without appending.
//
// Probability scores follow a tanh curve: zero at or below the threshold, 50
// just above it, approaching but never reaching 100 at the ceiling. Every
// anomaly carries the SHA-256 of the JSON-serialized window it was derived
// from.
package anomaly
