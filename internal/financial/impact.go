package financial

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/physics"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Fixed economic constants.
var (
	hoursPerYear     = numeric.I(8760)
	hoursPer30Days   = numeric.I(720)
	kilo             = numeric.I(1000)
	emergencyRepair  = numeric.I(120000)
	preventativeCost = numeric.I(15000)
	detectedWeight   = numeric.F(0.85)
	undetectedWeight = numeric.F(0.10)
	waterCostRate    = numeric.F(0.05)
	assetValueRate   = numeric.F(0.05)

	surgeDamageBar      = numeric.I(100)
	eccentricityDamage  = numeric.F(0.8)
	surgeDamageCost     = numeric.I(85000)
	eccentricDamageCost = numeric.I(120000)
	efficiencyDamage    = numeric.I(45000)
)

// Input is everything Impact reads.
type Input struct {
	State   types.AssetState
	Physics types.PhysicsResult
	Risk    types.RiskAssessment
	Profile profile.Profile

	// MarketPrice in currency per MWh. Zero uses the profile's revenue
	// coefficient.
	MarketPrice float64

	Maintenance MaintenanceOptions
}

// Impact computes the financial summary.
func Impact(in Input) types.FinancialSummary {
	c := in.Profile.Coefficients
	var s types.FinancialSummary

	s.PricePerMWh = numeric.F(c.RevenuePerMWh)
	if in.MarketPrice > 0 {
		s.PricePerMWh = numeric.F(in.MarketPrice)
	}

	// lost revenue
	loss := numeric.Max(numeric.Zero, physics.BaselinePowerMW(in.State.Hydraulic).Sub(in.Physics.PowerMW))
	s.LostRevenueHourly = loss.Mul(s.PricePerMWh)
	s.LostRevenueAnnual = s.LostRevenueHourly.Mul(hoursPerYear)
	s.Projection30Day = s.LostRevenueHourly.Mul(hoursPer30Days)

	// inefficiency tax below the profile threshold
	eta := physics.NormalizeEfficiency(numeric.F(in.State.Hydraulic.Efficiency))
	threshold := numeric.F(c.InefficiencyTaxThreshold)
	belowThreshold := eta.LessThan(threshold)
	if belowThreshold {
		gap := threshold.Sub(eta)
		s.InefficiencyTax = numeric.F(in.State.Hydraulic.FlowM3S).
			Mul(numeric.F(in.State.Hydraulic.HeadM)).
			Mul(gap).
			Mul(numeric.Div(s.PricePerMWh, kilo)).
			Mul(hoursPer30Days)
	}

	if in.State.Simulation {
		s.PotentialDamage = potentialDamage(in.Physics, belowThreshold)
	}

	s.RiskScore = RiskScore(in.Risk.Status)
	s.MaintenanceBuffer = MaintenanceBuffer(numeric.F(c.MaintenanceBaseCost), s.RiskScore)
	s.ExpectedMaintenance = ExpectedMaintenanceCost(s.RiskScore,
		in.State.Operational.HoursSinceOverhaul, in.Maintenance)

	weight := undetectedWeight
	if s.RiskScore.IsPositive() {
		weight = detectedWeight
	}
	s.PreventativeSavings = emergencyRepair.Sub(preventativeCost).Mul(weight)

	excess := numeric.Max(numeric.Zero, in.Physics.SpecificWater.Sub(in.Physics.DesignWater))
	s.LeakageCost = excess.Mul(in.Physics.PowerMW).Mul(kilo).Mul(hoursPerYear).Mul(waterCostRate)

	s.LifeExtensionSavings = LifeExtension(numeric.F(c.NominalPowerMW), in.State.Structural.LongevityLeakYears)

	s.TotalExposure = s.LostRevenueAnnual.
		Add(s.InefficiencyTax).
		Add(s.PotentialDamage).
		Add(s.LeakageCost)
	return roundSummary(s)
}

// RiskScore maps a status to 0, 50 or 100.
func RiskScore(st types.Status) decimal.Decimal {
	switch st {
	case types.StatusCritical:
		return numeric.Hundred
	case types.StatusWarning:
		return numeric.I(50)
	}
	return numeric.Zero
}

// MaintenanceBuffer shrinks the base buffer linearly with risk score: a
// CRITICAL asset has already consumed its buffer.
func MaintenanceBuffer(base, riskScore decimal.Decimal) decimal.Decimal {
	f := numeric.Clamp(numeric.One.Sub(numeric.Div(riskScore, numeric.Hundred)), numeric.Zero, numeric.One)
	return base.Mul(f)
}

// LifeExtension values extended life-years at the annualized asset value.
func LifeExtension(nominalMW, years decimal.Decimal) decimal.Decimal {
	if years.Sign() <= 0 {
		return numeric.Zero
	}
	return nominalMW.Mul(kilo).Mul(assetValueRate).Mul(hoursPerYear).Mul(years)
}

func potentialDamage(p types.PhysicsResult, belowThreshold bool) decimal.Decimal {
	switch {
	case p.SurgePressure.GreaterThan(surgeDamageBar):
		return surgeDamageCost
	case p.Eccentricity.GreaterThan(eccentricityDamage):
		return eccentricDamageCost
	case belowThreshold:
		return efficiencyDamage
	}
	return numeric.Zero
}

func roundSummary(s types.FinancialSummary) types.FinancialSummary {
	r := func(d decimal.Decimal) decimal.Decimal { return numeric.Round(d, 2) }
	s.LostRevenueHourly = r(s.LostRevenueHourly)
	s.LostRevenueAnnual = r(s.LostRevenueAnnual)
	s.Projection30Day = r(s.Projection30Day)
	s.InefficiencyTax = r(s.InefficiencyTax)
	s.MaintenanceBuffer = r(s.MaintenanceBuffer)
	s.ExpectedMaintenance = r(s.ExpectedMaintenance)
	s.LeakageCost = r(s.LeakageCost)
	s.LifeExtensionSavings = r(s.LifeExtensionSavings)
	s.TotalExposure = r(s.TotalExposure)
	return s
}
