package physics

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/internal/risk"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Input is everything Compute reads. It is assembled from an AssetState and
// the resolved turbine profile.
type Input struct {
	Hydraulic  types.Hydraulic
	Penstock   types.Penstock
	Mechanical types.Mechanical
	Pressures  types.Pressures
	Site       types.Site
	Profile    profile.Profile
	Thresholds risk.Thresholds
}

// FromAsset builds an Input from an asset snapshot.
func FromAsset(a types.AssetState, p profile.Profile, th risk.Thresholds) Input {
	return Input{
		Hydraulic:  a.Hydraulic,
		Penstock:   a.Penstock,
		Mechanical: a.Mechanical,
		Pressures:  a.Pressures,
		Site:       a.Site,
		Profile:    p,
		Thresholds: th,
	}
}

// Compute derives the full PhysicsResult.
func Compute(in Input) types.PhysicsResult {
	var r types.PhysicsResult

	head := numeric.Max(numeric.F(in.Hydraulic.HeadM), numeric.Zero)
	flow := numeric.Max(numeric.F(in.Hydraulic.FlowM3S), numeric.Zero)
	d := numeric.F(in.Penstock.DiameterM)
	t := numeric.F(in.Penstock.WallThicknessM)

	// 1–3: velocity, wave speed, surge
	r.VelocityMS = FlowVelocity(flow, d)
	r.WaveSpeedMS = WaveSpeed(d, t, elasticModulusPa(in.Penstock))
	surgePa := SurgePa(r.WaveSpeedMS, r.VelocityMS)
	r.SurgePressure = numeric.Div(surgePa, pascalPerBar)

	// 4: friction and net head
	r.Reynolds = Reynolds(r.VelocityMS, d)
	r.FrictionFactor = FrictionFactor(r.Reynolds, Roughness(in.Penstock.Material), d)
	r.HeadLossM = HeadLoss(r.FrictionFactor, numeric.F(in.Penstock.LengthM), d, r.VelocityMS)
	r.NetHeadM = numeric.Max(numeric.Zero, head.Sub(r.HeadLossM))

	// 5: hoop stress on static + surge
	r.StaticPressure = StaticPressureBar(head)
	staticPa := Density.Mul(Gravity).Mul(head)
	r.HoopStressMPa = HoopStressMPa(staticPa.Add(surgePa), d, t)
	r.HoopSafety = SafetyFactor(yieldStrength(in.Penstock), r.HoopStressMPa)

	// 6: power and performance
	r.PowerMW = PowerMW(r.NetHeadM, flow, numeric.F(in.Hydraulic.Efficiency))
	baseline := BaselinePowerMW(in.Hydraulic)
	r.PerformanceDiff = numeric.Div(r.PowerMW.Sub(baseline), baseline).Mul(numeric.Hundred)
	designPower := designPowerMW(in.Site)
	r.PerformanceGap = numeric.DivOr(r.PowerMW, designPower, numeric.One).Mul(numeric.Hundred)
	r.TypicalEfficiency = profile.TypicalEfficiency(in.Profile.Type, in.Hydraulic.HeadM)
	effPct := NormalizeEfficiency(numeric.F(in.Hydraulic.Efficiency)).Mul(numeric.Hundred)
	r.EfficiencyGap = r.TypicalEfficiency.Sub(effPct)
	r.SpecificSpeed = SpecificSpeed(numeric.F(in.Mechanical.RPM), r.PowerMW.Mul(kilo), r.NetHeadM)
	r.SpecificWater = SpecificWater(flow, r.PowerMW)
	r.DesignWater = SpecificWater(designFlow(in.Site), designPower)
	r.Leakage = risk.Leakage(r.SpecificWater, r.DesignWater, in.Thresholds)

	// 7: orbit
	r.Eccentricity = Eccentricity(
		numeric.F(in.Mechanical.VibrationXMMS),
		numeric.F(in.Mechanical.VibrationYMMS),
		in.Profile.Correction,
	)

	// 8: head-cover bolts
	b := in.Mechanical.Bolt
	r.BoltLoadKN = BoltLoadKN(boltPressurePa(in.Pressures, staticPa.Add(surgePa)), runnerDiameterMM(in.Penstock), b.Count)
	r.BoltCapacityKN = BoltCapacityKN(boltDiameterMM(b), boltGrade(b))
	r.BoltSafety = SafetyFactor(r.BoltCapacityKN, r.BoltLoadKN)

	// 9: turbine-specific loads
	strategy := in.Profile.Strategy
	if strategy == nil {
		strategy = profile.Default().Strategy
	}
	r.AxialThrustKN = strategy.AxialThrust(in.Pressures)
	r.VolumetricLoss = strategy.VolumetricLoss(in.Pressures)

	r.Status = risk.EvaluatePhysics(r, in.Thresholds)
	return r
}

// BaselinePowerMW returns the configured baseline or DefaultBaselinePowerMW.
func BaselinePowerMW(h types.Hydraulic) decimal.Decimal {
	if h.BaselinePowerMW > 0 {
		return numeric.F(h.BaselinePowerMW)
	}
	return numeric.F(DefaultBaselinePowerMW)
}

// boltPressurePa is the pressure acting on the head cover: the measured
// spiral-case to draft-tube differential, or the penstock's static plus
// surge pressure when neither side is reported.
func boltPressurePa(p types.Pressures, penstockPa decimal.Decimal) decimal.Decimal {
	spiral, draft := numeric.F(p.SpiralCaseBar), numeric.F(p.DraftTubeBar)
	if spiral.IsZero() && draft.IsZero() {
		return penstockPa
	}
	return numeric.Max(numeric.Zero, spiral.Sub(draft).Mul(pascalPerBar))
}

func elasticModulusPa(p types.Penstock) decimal.Decimal {
	gpa := p.ElasticModulusGPa
	if gpa <= 0 {
		gpa = DefaultElasticModulusGPa
	}
	return numeric.F(gpa).Mul(numeric.I(1000000000))
}

func yieldStrength(p types.Penstock) decimal.Decimal {
	if p.YieldStrengthMPa > 0 {
		return numeric.F(p.YieldStrengthMPa)
	}
	return numeric.F(DefaultYieldStrengthMPa)
}

func designFlow(s types.Site) decimal.Decimal {
	if s.DesignFlowM3S > 0 {
		return numeric.F(s.DesignFlowM3S)
	}
	return numeric.F(DefaultDesignFlowM3S)
}

func designPowerMW(s types.Site) decimal.Decimal {
	if s.DesignPowerMW > 0 {
		return numeric.F(s.DesignPowerMW)
	}
	return numeric.F(DefaultDesignPowerMW)
}

func runnerDiameterMM(p types.Penstock) decimal.Decimal {
	if p.RunnerDiameterMM > 0 {
		return numeric.F(p.RunnerDiameterMM)
	}
	return numeric.F(DefaultRunnerDiameterMM)
}

func boltDiameterMM(b types.Bolt) decimal.Decimal {
	if b.DiameterMM > 0 {
		return numeric.F(b.DiameterMM)
	}
	return numeric.F(DefaultBoltDiameterMM)
}

func boltGrade(b types.Bolt) string {
	if b.Grade != "" {
		return b.Grade
	}
	return DefaultBoltGrade
}
