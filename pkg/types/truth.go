package types

import "time"

// ComponentStatus is one side's view of a sub-component.
type ComponentStatus string

const (
	ComponentHealthy  ComponentStatus = "healthy"
	ComponentWarning  ComponentStatus = "warning"
	ComponentCritical ComponentStatus = "critical"
	ComponentUnknown  ComponentStatus = "unknown"
)

// Agreement is the reconciliation outcome between machine and human views.
type Agreement string

const (
	AgreementSyncHealthy   Agreement = "sync_healthy"
	AgreementSyncFault     Agreement = "sync_fault"
	AgreementFalsePositive Agreement = "false_positive"
	AgreementFalseNegative Agreement = "false_negative"
	AgreementUnknown       Agreement = "unknown"
)

// Diagnostic is one machine-generated diagnostic message.
type Diagnostic struct {
	Component string `json:"component"`
	// Severity is one of CRITICAL, HIGH, MEDIUM, WARNING, LOW, INFO,
	// UNKNOWN or OFFLINE (case-insensitive).
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LogEntry is one human-entered maintenance log or work-order note.
type LogEntry struct {
	Component string    `json:"component"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TruthDelta is the reconciliation result for one sub-component.
type TruthDelta struct {
	Asset         string          `json:"asset"`
	Component     string          `json:"component"`
	MachineStatus ComponentStatus `json:"machine_status"`
	HumanStatus   ComponentStatus `json:"human_status"`
	Agreement     Agreement       `json:"agreement"`
	Color         string          `json:"color"`
	// Confidence is EMA-smoothed and always within [0, 100].
	Confidence float64 `json:"confidence"`
}
