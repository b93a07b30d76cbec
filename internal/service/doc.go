// Package service wires the evaluation engine to its collaborators: gateway
// scrapers feed telemetry in, and the store, alert engine and Prometheus
// collectors receive every outcome.
//
// One goroutine per source polls its gateway on the source's scrape
// interval. Assets without a source are evaluated once at Bootstrap from
// their asset file, and again whenever the config or that file changes.
// Every load-evaluate-store cycle runs under the engine's per-asset lock.
package service
