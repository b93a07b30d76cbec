// Package scraper polls turbine telemetry gateways.
//
// A gateway exposes turbine_* gauges in Prometheus text format, one
// gateway per asset. Gateway.Scrape returns a ScrapeResult holding the
// readings that were present plus any turbine_diagnostic series, which
// become machine-side diagnostics for truth-delta reconciliation.
// ScrapeResult.Apply folds the readings into an AssetState.
//
// Authentication (API key, bearer token, basic) is handled by the shared
// authRoundTripper in base.go.
package scraper
