// Package config loads and watches the hydroguard configuration file.
//
// Top-level sections:
//   - service: http_port, metrics_path, snapshot_ttl, auth (apikey|none)
//   - engine: market_price, maintenance, anomaly, truth_delta, structural,
//     risk and per-turbine-type profile overrides
//   - assets: id, name, turbine_type and an asset file describing the unit
//   - sources: one telemetry gateway per asset (endpoint, scrape_interval,
//     auth, tls)
//   - alerts: rules and webhook targets
//
// Load(path) reads the YAML file, applies defaults, then validates required
// fields and enums. Watch(ctx, path, onChange) reloads on change and keeps
// the previous config when a reload fails.
package config
