package types

import "time"

// TelemetrySnapshot is one point-in-time telemetry sample.
type TelemetrySnapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	Efficiency   float64   `json:"efficiency"`
	PowerMW      float64   `json:"power_mw"`
	VibrationMMS float64   `json:"vibration_mms"`
	BearingTempC float64   `json:"bearing_temp_c"`
	FlowM3S      float64   `json:"flow_m3s"`
	HeadM        float64   `json:"head_m"`
}

// AnomalyType identifies the detector that fired.
type AnomalyType string

const (
	AnomalySilentLoss      AnomalyType = "SILENT_LOSS"
	AnomalyCavitation      AnomalyType = "CAVITATION"
	AnomalyThermalRunaway  AnomalyType = "THERMAL_RUNAWAY"
	AnomalyEfficiencyDrift AnomalyType = "EFFICIENCY_DRIFT"
)

// Severity grades a detected anomaly.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Evidence records the values that triggered a detector.
type Evidence struct {
	Baseline map[string]float64 `json:"baseline"`
	Current  map[string]float64 `json:"current"`
	Delta    map[string]float64 `json:"delta"`
}

// DetectedAnomaly is emitted when a detector fires.
type DetectedAnomaly struct {
	ID          string      `json:"id"`
	Stream      string      `json:"stream"`
	Type        AnomalyType `json:"type"`
	Severity    Severity    `json:"severity"`
	Probability float64     `json:"probability"`
	Description string      `json:"description"`
	DetectedAt  time.Time   `json:"detected_at"`

	// WindowDigest is the hex SHA-256 of the serialized telemetry window
	// the detector evaluated.
	WindowDigest string   `json:"window_digest"`
	Evidence     Evidence `json:"evidence"`
}
