package alerts

import (
	"strconv"
	"strings"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// evalCondition evaluates a rule condition string against an asset state.
//
// Supported expressions (field operator value):
//
//	status == critical
//	leakage == degrading
//	risk_score >= 50
//	urgency >= 4
//	remaining_life < 20
//	wear_index > 80
//	drf > 50
//	efficiency < 85
//	power_mw < 30
//	performance_gap > 10
//	surge_bar > 100
//	hoop_safety < 1.5
//	eccentricity > 0.8
//	axial_thrust_kn > 250
//	bolt_safety < 1.5
//	vibration_mms > 4.5
//	bearing_temp_c > 80
//	lost_revenue_annual > 100000
//	total_exposure > 500000
//
// Returns (fires bool, triggering value float64). Unparseable expressions
// and unknown fields never fire; fields that need a recomputation never
// fire before the first one.
func evalCondition(cond string, st types.AssetState) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "status":
		if op != "==" {
			return false, 0
		}
		return strings.EqualFold(string(st.Risk.Status), rhs), 0

	case "leakage":
		if op != "==" || st.Physics == nil {
			return false, 0
		}
		return strings.EqualFold(string(st.Physics.Leakage), rhs), 0

	default:
		v, ok := numericField(field, st)
		if !ok {
			return false, 0
		}
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		return compareFloat(v, op, threshold), v
	}
}

// numericField maps a field name to its value in the state.
func numericField(field string, st types.AssetState) (float64, bool) {
	switch field {
	case "urgency":
		return float64(st.Risk.Urgency), true
	case "remaining_life":
		return numeric.Float(st.Structural.RemainingLife), true
	case "wear_index":
		return numeric.Float(st.Structural.WearIndex), true
	case "drf":
		return numeric.Float(st.Structural.DRF), true
	case "efficiency":
		return st.Hydraulic.Efficiency, true
	case "vibration_mms":
		return st.Mechanical.Vibration(), true
	case "bearing_temp_c":
		return st.Mechanical.BearingTempC, true
	}

	if p := st.Physics; p != nil {
		switch field {
		case "power_mw":
			return numeric.Float(p.PowerMW), true
		case "performance_gap":
			return numeric.Float(p.PerformanceGap), true
		case "surge_bar":
			return numeric.Float(p.SurgePressure), true
		case "hoop_safety":
			return numeric.Float(p.HoopSafety), true
		case "eccentricity":
			return numeric.Float(p.Eccentricity), true
		case "axial_thrust_kn":
			return numeric.Float(p.AxialThrustKN), true
		case "bolt_safety":
			return numeric.Float(p.BoltSafety), true
		}
	}

	if f := st.Financials; f != nil {
		switch field {
		case "risk_score":
			return numeric.Float(f.RiskScore), true
		case "lost_revenue_annual":
			return numeric.Float(f.LostRevenueAnnual), true
		case "total_exposure":
			return numeric.Float(f.TotalExposure), true
		}
	}
	return 0, false
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
