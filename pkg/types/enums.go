package types

import "strings"

// Status is the ordinal risk severity.
type Status string

const (
	StatusNominal  Status = "NOMINAL"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Rank orders statuses for worst-case aggregation. Unrecognised values rank
// as NOMINAL.
func (s Status) Rank() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worst returns the more severe of a and b.
func Worst(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	if a == "" {
		return StatusNominal
	}
	return a
}

// LeakageStatus classifies specific water consumption against design.
type LeakageStatus string

const (
	LeakageNominal   LeakageStatus = "NOMINAL"
	LeakageDegrading LeakageStatus = "DEGRADING"
	LeakageCritical  LeakageStatus = "CRITICAL"
)

// TurbineType is the enumerated turbine family used to select a profile.
type TurbineType string

const (
	TurbineUnknown   TurbineType = ""
	TurbineFrancis   TurbineType = "FRANCIS"
	TurbineKaplan    TurbineType = "KAPLAN"
	TurbinePelton    TurbineType = "PELTON"
	TurbineCrossflow TurbineType = "CROSSFLOW"
)

// ParseTurbineType maps a free-form type name to its tag. Unknown names
// return TurbineUnknown; they are a valid, handled state.
func ParseTurbineType(s string) TurbineType {
	switch TurbineType(strings.ToUpper(strings.TrimSpace(s))) {
	case TurbineFrancis:
		return TurbineFrancis
	case TurbineKaplan:
		return TurbineKaplan
	case TurbinePelton:
		return TurbinePelton
	case TurbineCrossflow:
		return TurbineCrossflow
	default:
		return TurbineUnknown
	}
}

// UnmarshalText lets YAML and JSON decode case-insensitive type names.
func (t *TurbineType) UnmarshalText(b []byte) error {
	*t = ParseTurbineType(string(b))
	return nil
}
