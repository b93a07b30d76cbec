package risk

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Factor names as they appear in RiskAssessment.Factors.
const (
	FactorSafety       = "hoop_safety_factor"
	FactorEccentricity = "eccentricity"
	FactorAxialThrust  = "axial_thrust"
	FactorLeakage      = "leakage"
	FactorVibration    = "vibration"
	FactorBearingTemp  = "bearing_temperature"
	FactorInsulation   = "insulation"
	FactorAxialPlay    = "axial_play"
	FactorOverhaul     = "hours_since_overhaul"
	FactorStartStop    = "start_stop_cycles"
)

// Classify evaluates every factor and aggregates worst-case.
func Classify(p types.PhysicsResult, m types.Mechanical, h types.Operational, th Thresholds) types.RiskAssessment {
	factors := physicsFactors(p, th)
	factors = append(factors,
		vibration(m.Vibration(), th),
		bearingTemp(m.BearingTempC, th),
		insulation(m.InsulationMOhm, m.RatedVoltageKV, th),
		axialPlay(m.AxialPlayMM, th),
		overhaul(h.HoursSinceOverhaul, th),
		startStop(h.StartStopCount, th),
	)
	return aggregate(factors)
}

// EvaluatePhysics aggregates only the physics-derived factors. It supplies
// PhysicsResult.Status.
func EvaluatePhysics(p types.PhysicsResult, th Thresholds) types.Status {
	return aggregate(physicsFactors(p, th)).Status
}

func aggregate(factors []types.RiskFactor) types.RiskAssessment {
	out := types.RiskAssessment{Status: types.StatusNominal, Urgency: 1, Factors: factors}
	for _, f := range factors {
		out.Status = types.Worst(out.Status, f.Status)
		if f.Urgency > out.Urgency {
			out.Urgency = f.Urgency
		}
	}
	if out.Urgency > 5 {
		out.Urgency = 5
	}
	return out
}

func physicsFactors(p types.PhysicsResult, th Thresholds) []types.RiskFactor {
	return []types.RiskFactor{
		safety(p.HoopSafety, th),
		above(FactorEccentricity, p.Eccentricity, th.EccentricityWarning, th.EccentricityCritical, 3, 4),
		above(FactorAxialThrust, p.AxialThrustKN, th.AxialThrustWarningKN, th.AxialThrustCriticalKN, 3, 4),
		leakage(p.Leakage, p.SpecificWater),
	}
}

// Leakage compares actual against design specific water consumption.
// A zero design value disables the check.
func Leakage(actual, design decimal.Decimal, th Thresholds) types.LeakageStatus {
	if design.Sign() <= 0 {
		return types.LeakageNominal
	}
	switch {
	case actual.GreaterThan(design.Mul(numeric.F(th.LeakageCritical))):
		return types.LeakageCritical
	case actual.GreaterThan(design.Mul(numeric.F(th.LeakageDegrading))):
		return types.LeakageDegrading
	}
	return types.LeakageNominal
}

func safety(sf decimal.Decimal, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorSafety, Status: types.StatusNominal, Urgency: 1, Value: sf}
	switch {
	case sf.LessThan(numeric.F(th.SafetyFactorCritical)):
		f.Status, f.Urgency = types.StatusCritical, 5
	case sf.LessThan(numeric.F(th.SafetyFactorWarning)):
		f.Status, f.Urgency = types.StatusWarning, 3
	}
	return f
}

func above(name string, v decimal.Decimal, warn, crit float64, warnUrg, critUrg int) types.RiskFactor {
	f := types.RiskFactor{Name: name, Status: types.StatusNominal, Urgency: 1, Value: v}
	switch {
	case v.GreaterThan(numeric.F(crit)):
		f.Status, f.Urgency = types.StatusCritical, critUrg
	case v.GreaterThan(numeric.F(warn)):
		f.Status, f.Urgency = types.StatusWarning, warnUrg
	}
	return f
}

func leakage(s types.LeakageStatus, swc decimal.Decimal) types.RiskFactor {
	f := types.RiskFactor{Name: FactorLeakage, Status: types.StatusNominal, Urgency: 1, Value: swc, Band: string(s)}
	switch s {
	case types.LeakageCritical:
		f.Status, f.Urgency = types.StatusCritical, 4
	case types.LeakageDegrading:
		f.Status, f.Urgency = types.StatusWarning, 2
	}
	return f
}

// VibrationZone returns the ISO 10816 zone label for an amplitude.
func VibrationZone(v float64, th Thresholds) string {
	switch {
	case v <= th.VibrationGood:
		return "Good"
	case v <= th.VibrationSatisfactory:
		return "Satisfactory"
	case v <= th.VibrationUnsatisfactory:
		return "Unsatisfactory"
	default:
		return "Unacceptable"
	}
}

func vibration(v float64, th Thresholds) types.RiskFactor {
	zone := VibrationZone(v, th)
	f := types.RiskFactor{Name: FactorVibration, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(v), Band: zone}
	switch zone {
	case "Satisfactory":
		f.Urgency = 2
	case "Unsatisfactory":
		f.Status, f.Urgency = types.StatusWarning, 3
	case "Unacceptable":
		f.Status, f.Urgency = types.StatusCritical, 5
	}
	return f
}

func bearingTemp(c float64, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorBearingTemp, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(c), Band: "Normal"}
	switch {
	case c >= th.BearingTempCritical:
		f.Status, f.Urgency, f.Band = types.StatusCritical, 5, "Critical"
	case c >= th.BearingTempWarning:
		f.Status, f.Urgency, f.Band = types.StatusWarning, 3, "Warning"
	}
	return f
}

// insulation scales the critical floor with rated voltage: 1 MΩ per kV
// plus 1 MΩ. Zero resistance means no measurement was taken.
func insulation(mohm, ratedKV float64, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorInsulation, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(mohm), Band: "Healthy"}
	if mohm <= 0 || mohm >= th.InsulationHealthy {
		return f
	}
	if ratedKV <= 0 {
		ratedKV = th.DefaultRatedVoltageKV
	}
	if mohm > ratedKV+1 {
		f.Status, f.Urgency, f.Band = types.StatusWarning, 2, "Degraded"
		return f
	}
	f.Status, f.Urgency, f.Band = types.StatusCritical, 4, "Critical"
	return f
}

func axialPlay(mm float64, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorAxialPlay, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(mm)}
	switch {
	case mm > th.AxialPlayMaxMM*th.AxialPlayCritical:
		f.Status, f.Urgency = types.StatusCritical, 4
	case mm > th.AxialPlayMaxMM*th.AxialPlayWarning:
		f.Status, f.Urgency = types.StatusWarning, 3
	}
	return f
}

func overhaul(hours float64, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorOverhaul, Status: types.StatusNominal, Urgency: 1, Value: numeric.F(hours)}
	switch {
	case hours > th.OverhaulMajorHours:
		f.Status, f.Urgency, f.Band = types.StatusCritical, 4, "major"
	case hours > th.OverhaulMinorHours:
		f.Status, f.Urgency, f.Band = types.StatusWarning, 2, "minor"
	}
	return f
}

func startStop(n int64, th Thresholds) types.RiskFactor {
	f := types.RiskFactor{Name: FactorStartStop, Status: types.StatusNominal, Urgency: 1, Value: numeric.I(n)}
	if n > th.StartStopLimit {
		f.Status, f.Urgency = types.StatusWarning, 3
	}
	return f
}
