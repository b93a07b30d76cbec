package financial

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
)

// component is a maintainable part with a base annual failure probability
// and replacement cost.
type component struct {
	name        string
	probability float64
	cost        float64
}

var components = []component{
	{"bearing", 0.02, 45000},
	{"seal", 0.04, 8000},
	{"runner", 0.005, 120000},
	{"governor", 0.01, 15000},
	{"generator", 0.008, 60000},
}

var (
	// ageHorizonHours is 20 years of continuous operation; age raises
	// failure probability by up to 3x.
	ageHorizonHours = numeric.I(175200)

	// inventoryScale is the spare-parts value that would halve repair spend
	// if the discount were not capped at 50%.
	inventoryScale = numeric.I(1000000)
	inventoryCap   = numeric.F(0.5)
	sigmaCap       = numeric.I(5)
)

// MaintenanceOptions calibrate the probabilistic maintenance model.
type MaintenanceOptions struct {
	// Sigma is the observed failure-rate spread. Nil doubles the base
	// probabilities; otherwise they scale by 1 + min(5, 10·sigma).
	Sigma *float64 `yaml:"sigma" json:"sigma,omitempty"`

	// InventoryValue of spare parts on site. Stock on hand cuts repair cost
	// by up to half.
	InventoryValue float64 `yaml:"inventory_value" json:"inventory_value"`
}

// Validate rejects negative calibration values.
func (o MaintenanceOptions) Validate() error {
	if o.Sigma != nil && *o.Sigma < 0 {
		return errors.New("sigma must not be negative")
	}
	if o.InventoryValue < 0 {
		return errors.New("inventory_value must not be negative")
	}
	return nil
}

func (o MaintenanceOptions) sigmaMultiplier() decimal.Decimal {
	if o.Sigma == nil {
		return numeric.Two
	}
	return numeric.One.Add(numeric.Min(sigmaCap, numeric.F(*o.Sigma).Mul(numeric.I(10))))
}

func (o MaintenanceOptions) inventoryMultiplier() decimal.Decimal {
	if o.InventoryValue <= 0 {
		return numeric.One
	}
	return numeric.One.Sub(numeric.Min(inventoryCap, numeric.Div(numeric.F(o.InventoryValue), inventoryScale)))
}

// ExpectedMaintenanceCost sums probability × cost over the maintainable
// components. Probabilities scale with sigma, risk score and age since
// overhaul; costs shrink with spare-parts inventory.
func ExpectedMaintenanceCost(riskScore decimal.Decimal, hoursSinceOverhaul float64, opts MaintenanceOptions) decimal.Decimal {
	riskMul := numeric.One.Add(numeric.Div(riskScore, numeric.Hundred).Mul(numeric.F(0.5)))
	ageMul := numeric.One.Add(numeric.Min(numeric.Two, numeric.Div(numeric.F(hoursSinceOverhaul), ageHorizonHours)))
	probMul := opts.sigmaMultiplier().Mul(riskMul).Mul(ageMul)
	costMul := opts.inventoryMultiplier()

	total := numeric.Zero
	for _, c := range components {
		p := numeric.F(c.probability).Mul(probMul)
		total = total.Add(p.Mul(numeric.F(c.cost).Mul(costMul)))
	}
	return total
}
