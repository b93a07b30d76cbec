// Package store keeps the latest evaluated state of every asset in memory,
// together with recent anomalies and the latest truth delta per component.
// Asset entries not refreshed within the TTL are evicted by Run.
package store
