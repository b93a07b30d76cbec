package physics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/profile"
)

var (
	swameeJainNumerator = numeric.F(0.25)
	swameeJainRe        = numeric.F(5.74)
	swameeJainExp       = numeric.F(0.9)
	swameeJainRough     = numeric.F(3.7)
	laminarCoefficient  = numeric.I(64)

	singleAxisEpsilon = numeric.F(0.01)
	singleAxisCap     = numeric.F(0.75)
)

// FlowVelocity returns Q/(π(d/2)²). A zero diameter returns Q unchanged.
func FlowVelocity(flow, diameter decimal.Decimal) decimal.Decimal {
	r := numeric.Div(diameter, numeric.Two)
	area := numeric.Pi.Mul(r).Mul(r)
	return numeric.DivOr(flow, area, flow)
}

// WaveSpeed returns the pressure wave celerity in an elastic pipe:
// a = √((K/ρ) / (1 + (K/E)(D/t))). Zero wall thickness or modulus gives the
// rigid-pipe value √(K/ρ).
func WaveSpeed(diameter, thickness, modulusPa decimal.Decimal) decimal.Decimal {
	rigid := numeric.Div(BulkModulus, Density)
	if thickness.Sign() <= 0 || modulusPa.Sign() <= 0 {
		return numeric.Sqrt(rigid)
	}
	elastic := numeric.Div(BulkModulus, modulusPa).Mul(numeric.Div(diameter, thickness))
	return numeric.Sqrt(numeric.Div(rigid, numeric.One.Add(elastic)))
}

// SurgePa returns the Joukowsky pressure rise ρ·a·v in pascal.
func SurgePa(waveSpeed, velocity decimal.Decimal) decimal.Decimal {
	return Density.Mul(waveSpeed).Mul(velocity)
}

// Reynolds returns v·d/ν.
func Reynolds(velocity, diameter decimal.Decimal) decimal.Decimal {
	return numeric.Div(velocity.Mul(diameter), KinematicViscosity)
}

// Roughness returns the absolute roughness in metres for a material name.
func Roughness(material string) decimal.Decimal {
	mm, ok := roughnessMM[strings.ToUpper(strings.TrimSpace(material))]
	if !ok {
		mm = defaultRoughnessMM
	}
	return numeric.Div(numeric.F(mm), kilo)
}

// FrictionFactor returns the Darcy friction factor: 64/Re for laminar flow,
// Swamee–Jain otherwise. Re = 0 returns 0.
func FrictionFactor(re, roughnessM, diameter decimal.Decimal) decimal.Decimal {
	if re.Sign() <= 0 {
		return numeric.Zero
	}
	if re.LessThan(LaminarLimit) {
		return numeric.Div(laminarCoefficient, re)
	}
	rel := numeric.Div(roughnessM, swameeJainRough.Mul(diameter))
	turb := numeric.Div(swameeJainRe, numeric.Pow(re, swameeJainExp))
	l := numeric.Log10(rel.Add(turb))
	return numeric.Div(swameeJainNumerator, l.Mul(l))
}

// HeadLoss returns the Darcy–Weisbach loss f·(L/D)·v²/(2g) in metres.
func HeadLoss(f, length, diameter, velocity decimal.Decimal) decimal.Decimal {
	ld := numeric.Div(length, diameter)
	return f.Mul(ld).Mul(numeric.Div(velocity.Mul(velocity), numeric.Two.Mul(Gravity)))
}

// HoopStressMPa returns Barlow's σ = P·D/(2t) in MPa for a total pressure in
// pascal. Zero thickness returns 0.
func HoopStressMPa(pressurePa, diameter, thickness decimal.Decimal) decimal.Decimal {
	return numeric.Div(pressurePa.Mul(diameter), numeric.Two.Mul(thickness).Mul(pascalPerMPa))
}

// PowerMW returns ρ·g·H·Q·η in MW. η above 1 is read as a percentage.
func PowerMW(head, flow, efficiency decimal.Decimal) decimal.Decimal {
	eta := NormalizeEfficiency(efficiency)
	return numeric.Div(Density.Mul(Gravity).Mul(head).Mul(flow).Mul(eta), wattsPerMW)
}

// NormalizeEfficiency converts a percentage to a ratio; ratios pass through.
func NormalizeEfficiency(eta decimal.Decimal) decimal.Decimal {
	if eta.GreaterThan(numeric.One) {
		return numeric.Div(eta, numeric.Hundred)
	}
	return eta
}

// StaticPressureBar applies the 10 m water column per bar rule.
func StaticPressureBar(head decimal.Decimal) decimal.Decimal {
	return numeric.Div(head, MetresPerBar)
}

// Eccentricity models the shaft orbit as an ellipse and returns
// √(1 − (minor/major)²) after the profile's axis correction. A negligible
// orbit returns 0 and a single-axis orbit is capped at 0.75.
func Eccentricity(x, y decimal.Decimal, c profile.Correction) decimal.Decimal {
	x, y = x.Abs(), y.Abs()
	if c.Factor > 0 {
		switch c.Axis {
		case profile.AxisX:
			x = x.Mul(numeric.F(c.Factor))
		case profile.AxisY:
			y = y.Mul(numeric.F(c.Factor))
		}
	}
	major, minor := numeric.Max(x, y), numeric.Min(x, y)
	if major.LessThan(singleAxisEpsilon) {
		return numeric.Zero
	}
	ratio := numeric.Div(minor, major)
	e := numeric.Sqrt(numeric.One.Sub(ratio.Mul(ratio)))
	if minor.LessThan(singleAxisEpsilon) {
		return numeric.Min(e, singleAxisCap)
	}
	return e
}

// BoltYield returns the yield strength in MPa for a property class.
func BoltYield(grade string) decimal.Decimal {
	y, ok := boltYieldMPa[strings.TrimSpace(grade)]
	if !ok {
		y = defaultBoltYieldMPa
	}
	return numeric.F(y)
}

// BoltLoadKN distributes the axial pressure force over the runner area
// across all bolts.
func BoltLoadKN(deltaPa, runnerDiameterMM decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		count = DefaultBoltCount
	}
	r := numeric.Div(runnerDiameterMM, numeric.I(2000))
	force := deltaPa.Mul(numeric.Pi).Mul(r).Mul(r)
	return numeric.Div(force, numeric.I(int64(count)).Mul(kilo))
}

// BoltCapacityKN returns the yield capacity of one bolt.
func BoltCapacityKN(diameterMM decimal.Decimal, grade string) decimal.Decimal {
	r := numeric.Div(diameterMM, numeric.Two)
	return numeric.Div(numeric.Pi.Mul(r).Mul(r).Mul(BoltYield(grade)), kilo)
}

// SafetyFactor returns capacity/max(load, 1).
func SafetyFactor(capacity, load decimal.Decimal) decimal.Decimal {
	return numeric.Div(capacity, numeric.Max(load, numeric.One))
}

// SpecificWater returns m³ of water per kWh: Q·3600/(P·1000). Zero power
// returns 0.
func SpecificWater(flow, powerMW decimal.Decimal) decimal.Decimal {
	return numeric.Div(flow.Mul(secondsPerHour), powerMW.Mul(kilo))
}

// SpecificSpeed returns n·√P/H^1.25. Zero head returns 0.
func SpecificSpeed(rpm, powerKW, head decimal.Decimal) decimal.Decimal {
	if head.Sign() <= 0 {
		return numeric.Zero
	}
	return numeric.Div(rpm.Mul(numeric.Sqrt(powerKW)), numeric.Pow(head, numeric.F(1.25)))
}
