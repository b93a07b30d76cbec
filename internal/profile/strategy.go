package profile

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Strategy computes the turbine-specific hydraulic loads.
type Strategy interface {
	Name() string
	// AxialThrust returns the hydraulic axial thrust in kN.
	AxialThrust(p types.Pressures) decimal.Decimal
	// VolumetricLoss returns the seal leakage loss in percent of flow.
	VolumetricLoss(p types.Pressures) decimal.Decimal
}

// zeroStrategy is used by every type without its own formulas.
type zeroStrategy struct{}

func (zeroStrategy) Name() string                                   { return "default" }
func (zeroStrategy) AxialThrust(types.Pressures) decimal.Decimal    { return numeric.Zero }
func (zeroStrategy) VolumetricLoss(types.Pressures) decimal.Decimal { return numeric.Zero }

// francisStrategy models a reaction runner: thrust from the spiral case to
// draft tube pressure differential over the runner area, and leakage from
// runner and labyrinth seal clearances beyond nominal.
type francisStrategy struct {
	runnerDiameterM float64
}

var (
	barToPa = numeric.I(100000)
	kilo    = numeric.I(1000)

	runnerGapNominal    = numeric.F(0.5)
	runnerGapSlope      = numeric.F(4.5)
	labyrinthGapNominal = numeric.F(0.3)
	labyrinthGapSlope   = numeric.F(6.2)
)

func (francisStrategy) Name() string { return "francis" }

func (f francisStrategy) AxialThrust(p types.Pressures) decimal.Decimal {
	r := numeric.Div(numeric.F(f.runnerDiameterM), numeric.Two)
	area := numeric.Pi.Mul(r).Mul(r)
	dp := numeric.F(p.SpiralCaseBar).Sub(numeric.F(p.DraftTubeBar))
	return numeric.Div(area.Mul(dp).Mul(barToPa), kilo)
}

func (francisStrategy) VolumetricLoss(p types.Pressures) decimal.Decimal {
	runner := numeric.F(p.RunnerGapMM).Sub(runnerGapNominal).Mul(runnerGapSlope)
	labyrinth := numeric.F(p.LabyrinthGapMM).Sub(labyrinthGapNominal).Mul(labyrinthGapSlope)
	return numeric.Max(numeric.Zero, runner).Add(numeric.Max(numeric.Zero, labyrinth))
}
