package structural

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Scenario is a simulated disaster event.
type Scenario string

const (
	ScenarioNone        Scenario = ""
	ScenarioWaterHammer Scenario = "WATER_HAMMER"
	ScenarioGridLoss    Scenario = "GRID_LOSS"
)

// Event describes what, besides normal operation, happened during a tick.
type Event struct {
	Scenario        Scenario
	GridFrequencyHz float64
}

// Config holds the model constants.
type Config struct {
	ISOGoodLimit      float64 `yaml:"iso_good_limit"`
	RuleFraction      float64 `yaml:"rule_fraction"`
	BaselineAgingPct  float64 `yaml:"baseline_aging_pct"`
	MaxMultiplier     float64 `yaml:"max_multiplier"`
	MaxAcceleration   float64 `yaml:"max_acceleration"`
	DesignLifeYears   float64 `yaml:"design_life_years"`
	HoursPerYear      float64 `yaml:"hours_per_year"`
	WaterLimitPPM     float64 `yaml:"water_limit_ppm"`
	WaterPenaltyYears float64 `yaml:"water_penalty_years"`
	TANLimit          float64 `yaml:"tan_limit"`
	TANPenaltyYears   float64 `yaml:"tan_penalty_years"`

	NominalFrequencyHz float64 `yaml:"nominal_frequency_hz"`
	FrequencyTolerance float64 `yaml:"frequency_tolerance_hz"`
	MaxGridStress      float64 `yaml:"max_grid_stress"`

	WaterHammerCycles int64   `yaml:"water_hammer_cycles"`
	WaterHammerWear   float64 `yaml:"water_hammer_wear"`
	GridLossCycles    int64   `yaml:"grid_loss_cycles"`
	GridLossWear      float64 `yaml:"grid_loss_wear"`
}

// DefaultConfig returns the built-in model constants.
func DefaultConfig() Config {
	return Config{
		ISOGoodLimit:       2.3,
		RuleFraction:       0.48,
		BaselineAgingPct:   2.0,
		MaxMultiplier:      5,
		MaxAcceleration:    5,
		DesignLifeYears:    50,
		HoursPerYear:       8760,
		WaterLimitPPM:      500,
		WaterPenaltyYears:  3.5,
		TANLimit:           0.5,
		TANPenaltyYears:    2.5,
		NominalFrequencyHz: 50,
		FrequencyTolerance: 0.1,
		MaxGridStress:      1.5,
		WaterHammerCycles:  100,
		WaterHammerWear:    0.5,
		GridLossCycles:     50,
		GridLossWear:       0.25,
	}
}

// Validate rejects constants that would make wear decrease or divide by zero.
func (c Config) Validate() error {
	switch {
	case c.ISOGoodLimit <= 0:
		return fmt.Errorf("iso_good_limit must be > 0")
	case c.RuleFraction <= 0 || c.RuleFraction >= 1:
		return fmt.Errorf("rule_fraction must be within (0, 1)")
	case c.BaselineAgingPct <= 0:
		return fmt.Errorf("baseline_aging_pct must be > 0")
	case c.MaxMultiplier < 1 || c.MaxAcceleration < 1:
		return fmt.Errorf("max_multiplier and max_acceleration must be >= 1")
	case c.DesignLifeYears <= 0 || c.HoursPerYear <= 0:
		return fmt.Errorf("design_life_years and hours_per_year must be > 0")
	case c.NominalFrequencyHz <= 0 || c.MaxGridStress < 1:
		return fmt.Errorf("nominal_frequency_hz must be > 0 and max_grid_stress >= 1")
	case c.WaterHammerCycles < 0 || c.GridLossCycles < 0 || c.WaterHammerWear < 0 || c.GridLossWear < 0:
		return fmt.Errorf("scenario increments must be >= 0")
	}
	return nil
}

// Model advances structural metrics. It holds no per-asset state.
type Model struct {
	cfg Config
}

// New returns a Model using cfg.
func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Advance returns the metrics after one tick. Negative vibration readings
// are treated as zero so the increment is never negative.
func (m *Model) Advance(prev types.StructuralMetrics, mech types.Mechanical, ev Event) types.StructuralMetrics {
	next := prev
	wear := prev.WearIndex

	if inc, cycles := m.scenario(ev); cycles > 0 || inc.IsPositive() {
		wear = wear.Add(inc)
		next.FatigueCycles += cycles
	}

	drf := m.DRF(math.Max(0, mech.Vibration()))
	rate := m.YearlyWear(drf)
	wear = wear.Add(numeric.Div(rate, numeric.F(m.cfg.HoursPerYear)))

	next.WearIndex = numeric.Min(wear, numeric.Hundred)
	if next.WearIndex.LessThan(prev.WearIndex) {
		next.WearIndex = prev.WearIndex
	}
	next.RemainingLife = numeric.Max(numeric.Zero, numeric.Hundred.Sub(next.WearIndex))
	next.DRF = drf
	next.YearlyWearPct = rate
	next.LongevityLeakYears = m.LongevityLeak(rate, mech.Oil)
	return next
}

// Reset returns pristine metrics, as after a full overhaul.
func (m *Model) Reset() types.StructuralMetrics {
	return types.StructuralMetrics{
		WearIndex:          numeric.Zero,
		RemainingLife:      numeric.Hundred,
		DRF:                numeric.Zero,
		YearlyWearPct:      numeric.F(m.cfg.BaselineAgingPct),
		LongevityLeakYears: numeric.Zero,
	}
}

// DRF returns the normalised dynamic risk factor in [0, 100].
func (m *Model) DRF(vibration float64) decimal.Decimal {
	rule := numeric.F(m.cfg.RuleFraction)
	intensity := numeric.Div(numeric.F(vibration), numeric.F(m.cfg.ISOGoodLimit))
	scale := rule.Mul(numeric.Hundred)

	var drf decimal.Decimal
	if intensity.GreaterThan(rule) {
		ratio := numeric.Div(intensity, rule)
		drf = ratio.Mul(ratio).Mul(ratio).Mul(scale)
	} else {
		drf = intensity.Mul(scale)
	}
	return numeric.Clamp(drf, numeric.Zero, numeric.Hundred)
}

// YearlyWear returns the actual aging rate in percent of life per year.
func (m *Model) YearlyWear(drf decimal.Decimal) decimal.Decimal {
	base := numeric.F(m.cfg.BaselineAgingPct)
	accel := numeric.Div(drf, numeric.Hundred).Mul(numeric.F(m.cfg.MaxMultiplier).Sub(numeric.One))
	rate := base.Mul(numeric.One.Add(accel))
	return numeric.Min(rate, base.Mul(numeric.F(m.cfg.MaxAcceleration)))
}

// LongevityLeak returns the design-life years consumed by aging above
// baseline, plus tribology penalties.
func (m *Model) LongevityLeak(rate decimal.Decimal, oil types.Oil) decimal.Decimal {
	base := numeric.F(m.cfg.BaselineAgingPct)
	years := numeric.Div(rate.Sub(base), base).Mul(numeric.F(m.cfg.DesignLifeYears))
	if oil.WaterPPM > m.cfg.WaterLimitPPM {
		years = years.Add(numeric.F(m.cfg.WaterPenaltyYears))
	}
	if oil.TAN > m.cfg.TANLimit {
		years = years.Add(numeric.F(m.cfg.TANPenaltyYears))
	}
	return numeric.Round(years, 1)
}

// GridStressFactor is 1 within tolerance of nominal frequency, otherwise
// 1 + |deviation| capped at MaxGridStress. Zero means unknown and gives 1.
func (m *Model) GridStressFactor(hz float64) decimal.Decimal {
	if hz <= 0 {
		return numeric.One
	}
	dev := numeric.F(hz).Sub(numeric.F(m.cfg.NominalFrequencyHz)).Abs()
	if dev.LessThanOrEqual(numeric.F(m.cfg.FrequencyTolerance)) {
		return numeric.One
	}
	return numeric.Min(numeric.One.Add(dev), numeric.F(m.cfg.MaxGridStress))
}

func (m *Model) scenario(ev Event) (decimal.Decimal, int64) {
	var wear float64
	var cycles int64
	switch ev.Scenario {
	case ScenarioWaterHammer:
		wear, cycles = m.cfg.WaterHammerWear, m.cfg.WaterHammerCycles
	case ScenarioGridLoss:
		wear, cycles = m.cfg.GridLossWear, m.cfg.GridLossCycles
	default:
		return numeric.Zero, 0
	}
	return numeric.F(wear).Mul(m.GridStressFactor(ev.GridFrequencyHz)), cycles
}
