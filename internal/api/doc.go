// Package api implements the HTTP REST API for hydroguard.
//
// New(store, alerts, engine) returns an http.Handler that serves:
//
//	GET    /api/v1/health               worst status, per-status and stale counts, exposure
//	GET    /api/v1/assets               all assets ([]AssetResponse), stale ones flagged
//	GET    /api/v1/assets/{id}          single asset; 404 if unknown
//	GET    /api/v1/assets/{id}/truth    latest truth delta per component
//	DELETE /api/v1/assets/{id}/truth    forget reconciliation memory [?component=]
//	GET    /api/v1/assets/{id}/stream   anomaly window status
//	DELETE /api/v1/assets/{id}/stream   discard the anomaly window, keep the baseline
//	GET    /api/v1/assets/{id}/scan     every detector run over the current window
//	GET    /api/v1/assets/{id}/logs     maintenance log, oldest first
//	POST   /api/v1/assets/{id}/logs     add a maintenance log entry
//	POST   /api/v1/assets/{id}/reset    structural reset after an overhaul
//	GET    /api/v1/anomalies[?asset=]   detected anomalies, newest first
//	GET    /api/v1/alerts               firing and recent alerts
//	POST   /api/v1/appraise             NPV/IRR/payback of an investment
//	POST   /api/v1/maintenance-analysis maintenance versus do-nothing NPV
//	POST   /api/v1/lcoe                 levelized cost of energy
//	GET    /api/v1/streams              anomaly window status of every stream
//	GET    /api/v1/profiles             per turbine type coefficients and limits
//	GET    /api/v1/snapshot             full JSON dump plus generated_at
//
// All endpoints respond with Content-Type: application/json and return 405
// for unsupported methods. APIKey wraps the handler when key auth is on.
package api
