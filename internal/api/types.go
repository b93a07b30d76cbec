package api

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/anomaly"
	"github.com/hydroguard/hydroguard/internal/financial"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State         string  `json:"state"`
	AssetCount    int     `json:"asset_count"`
	NominalCount  int     `json:"nominal_count"`
	WarningCount  int     `json:"warning_count"`
	CriticalCount int     `json:"critical_count"`
	UnknownCount  int     `json:"unknown_count"`
	StaleCount    int     `json:"stale_count"`
	AlertCount    int     `json:"alert_count"`
	TotalExposure float64 `json:"total_exposure"`
}

// AssetResponse is one asset in GET /api/v1/assets or
// GET /api/v1/assets/{id}.
type AssetResponse struct {
	Asset        types.AssetState `json:"asset"`
	Availability float64          `json:"availability_pct"`
	Stream       anomaly.Status   `json:"stream"`
	Diagnostics  []DiagnosticHint `json:"diagnostics"`
	LastSeen     string           `json:"last_seen"` // RFC3339

	// Stale is set when no evaluation has updated the asset within the
	// store TTL, typically because its gateway is unreachable.
	Stale bool `json:"stale"`
}

// ProfileResponse is one turbine type in GET /api/v1/profiles.
type ProfileResponse struct {
	Type           types.TurbineType    `json:"type"`
	Strategy       string               `json:"strategy"`
	Coefficients   profile.Coefficients `json:"coefficients"`
	Limits         profile.Thresholds   `json:"limits"`
	VibrationZones VibrationZones       `json:"vibration_zones"`
}

// VibrationZones are the ISO 10816 zone upper limits in mm/s in effect
// for a turbine type.
type VibrationZones struct {
	Good           float64 `json:"good"`
	Satisfactory   float64 `json:"satisfactory"`
	Unsatisfactory float64 `json:"unsatisfactory"`
}

// MaintenanceRequest is the body of POST /api/v1/maintenance-analysis.
// Zero discount_rate and analysis_years use 8% over 10 years.
type MaintenanceRequest struct {
	financial.MaintenanceCase
	DiscountRate  float64 `json:"discount_rate"`
	AnalysisYears int     `json:"analysis_years"`
}

// LCOERequest is the body of POST /api/v1/lcoe.
type LCOERequest struct {
	InitialInvestment float64 `json:"initial_investment"`
	AnnualOMCost      float64 `json:"annual_om_cost"`
	AnnualEnergyMWh   float64 `json:"annual_energy_mwh"`
	LifetimeYears     int     `json:"lifetime_years"`
	DiscountRate      float64 `json:"discount_rate"`
}

// LCOEResponse is the levelized cost of energy per MWh.
type LCOEResponse struct {
	LCOE decimal.Decimal `json:"lcoe_per_mwh"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Assets      []AssetResponse         `json:"assets"`
	Anomalies   []types.DetectedAnomaly `json:"anomalies"`
	GeneratedAt string                  `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
