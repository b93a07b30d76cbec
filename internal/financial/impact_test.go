package financial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/pkg/types"
)

func francisInput() Input {
	return Input{
		State: types.AssetState{
			ID:          "unit-1",
			TurbineType: types.TurbineFrancis,
			Hydraulic:   types.Hydraulic{HeadM: 150, FlowM3S: 30, Efficiency: 0.9, BaselinePowerMW: 45},
		},
		Physics: types.PhysicsResult{
			PowerMW:       numeric.F(40),
			SpecificWater: numeric.F(1.2),
			DesignWater:   numeric.F(1.0),
			SurgePressure: numeric.F(20),
			Eccentricity:  numeric.F(0.3),
		},
		Risk:    types.RiskAssessment{Status: types.StatusNominal},
		Profile: profile.NewRegistry().Lookup(types.TurbineFrancis),
	}
}

func TestImpactNominal(t *testing.T) {
	s := Impact(francisInput())

	assert.Equal(t, 85.0, s.PricePerMWh.InexactFloat64())
	assert.Equal(t, 425.0, s.LostRevenueHourly.InexactFloat64())
	assert.Equal(t, 3723000.0, s.LostRevenueAnnual.InexactFloat64())
	assert.Equal(t, 306000.0, s.Projection30Day.InexactFloat64())
	assert.True(t, s.InefficiencyTax.IsZero())
	assert.True(t, s.PotentialDamage.IsZero(), "damage is only modelled in simulation")
	assert.True(t, s.RiskScore.IsZero())
	assert.Equal(t, 150000.0, s.MaintenanceBuffer.InexactFloat64())
	assert.Equal(t, 4900.0, s.ExpectedMaintenance.InexactFloat64())
	assert.Equal(t, 10500.0, s.PreventativeSavings.InexactFloat64())
	assert.Equal(t, 3504000.0, s.LeakageCost.InexactFloat64())
	assert.True(t, s.LifeExtensionSavings.IsZero())
	assert.Equal(t, 7227000.0, s.TotalExposure.InexactFloat64())
}

func TestImpactNoLossAboveBaseline(t *testing.T) {
	in := francisInput()
	in.Physics.PowerMW = numeric.F(50)
	s := Impact(in)
	assert.True(t, s.LostRevenueHourly.IsZero())
	assert.True(t, s.LostRevenueAnnual.IsZero())
}

func TestImpactInefficiencyTax(t *testing.T) {
	in := francisInput()
	in.State.Hydraulic.Efficiency = 80 // percent
	in.MarketPrice = 100

	s := Impact(in)
	assert.Equal(t, 100.0, s.PricePerMWh.InexactFloat64())
	// 30 · 150 · (0.88 − 0.80) · 100/1000 · 720
	assert.InDelta(t, 25920.0, s.InefficiencyTax.InexactFloat64(), 0.01)
}

func TestImpactPotentialDamage(t *testing.T) {
	tests := []struct {
		name  string
		surge float64
		ecc   float64
		eta   float64
		want  float64
	}{
		{"surge", 120, 0.9, 0.7, 85000},
		{"eccentricity", 50, 0.85, 0.7, 120000},
		{"efficiency", 50, 0.5, 0.7, 45000},
		{"healthy", 50, 0.5, 0.92, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := francisInput()
			in.State.Simulation = true
			in.State.Hydraulic.Efficiency = tc.eta
			in.Physics.SurgePressure = numeric.F(tc.surge)
			in.Physics.Eccentricity = numeric.F(tc.ecc)
			assert.Equal(t, tc.want, Impact(in).PotentialDamage.InexactFloat64())
		})
	}
}

func TestImpactRiskDriven(t *testing.T) {
	in := francisInput()
	in.Risk.Status = types.StatusCritical
	in.State.Operational.HoursSinceOverhaul = 87600
	in.State.Structural = types.StructuralMetrics{DRF: numeric.F(20), LongevityLeakYears: numeric.F(2)}

	s := Impact(in)
	assert.Equal(t, 100.0, s.RiskScore.InexactFloat64())
	assert.True(t, s.MaintenanceBuffer.IsZero())
	assert.Equal(t, 89250.0, s.PreventativeSavings.InexactFloat64())
	// 2450 · 2 · 1.5 · 1.5; DRF does not enter the maintenance model
	assert.InDelta(t, 11025.0, s.ExpectedMaintenance.InexactFloat64(), 0.01)
	// 4.5 MW · 1000 · 0.05 · 8760 · 2 years
	assert.InDelta(t, 3942000.0, s.LifeExtensionSavings.InexactFloat64(), 0.01)
}

func TestRiskScore(t *testing.T) {
	assert.Equal(t, 0.0, RiskScore(types.StatusNominal).InexactFloat64())
	assert.Equal(t, 50.0, RiskScore(types.StatusWarning).InexactFloat64())
	assert.Equal(t, 100.0, RiskScore(types.StatusCritical).InexactFloat64())
	assert.Equal(t, 0.0, RiskScore("").InexactFloat64())
}

func TestMaintenanceBuffer(t *testing.T) {
	base := numeric.I(150000)
	assert.Equal(t, 75000.0, MaintenanceBuffer(base, numeric.I(50)).InexactFloat64())
	assert.True(t, MaintenanceBuffer(base, numeric.I(150)).IsZero(), "never negative")
}

func TestExpectedMaintenanceAgeCapped(t *testing.T) {
	atCap := ExpectedMaintenanceCost(numeric.Zero, 2*175200, MaintenanceOptions{})
	beyond := ExpectedMaintenanceCost(numeric.Zero, 10*175200, MaintenanceOptions{})
	assert.InDelta(t, 2450.0*2*3, atCap.InexactFloat64(), 1e-9)
	assert.True(t, atCap.Equal(beyond))
}

func TestExpectedMaintenanceCost(t *testing.T) {
	sigma := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		risk  float64
		hours float64
		opts  MaintenanceOptions
		want  float64
	}{
		{"default sigma doubles", 0, 0, MaintenanceOptions{}, 4900},
		{"zero sigma", 0, 0, MaintenanceOptions{Sigma: sigma(0)}, 2450},
		{"sigma scales", 0, 0, MaintenanceOptions{Sigma: sigma(0.2)}, 2450 * 3},
		{"sigma capped", 0, 0, MaintenanceOptions{Sigma: sigma(2)}, 2450 * 6},
		{"warning risk", 50, 0, MaintenanceOptions{Sigma: sigma(0)}, 2450 * 1.25},
		{"half horizon", 0, 87600, MaintenanceOptions{Sigma: sigma(0)}, 2450 * 1.5},
		{"inventory discount", 0, 0, MaintenanceOptions{InventoryValue: 250000}, 4900 * 0.75},
		{"inventory capped", 0, 0, MaintenanceOptions{InventoryValue: 5000000}, 4900 * 0.5},
		{"combined", 100, 175200, MaintenanceOptions{Sigma: sigma(0.1), InventoryValue: 100000}, 2450 * 2 * 1.5 * 2 * 0.9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpectedMaintenanceCost(numeric.F(tc.risk), tc.hours, tc.opts)
			assert.InDelta(t, tc.want, got.InexactFloat64(), 1e-6)
		})
	}
}

func TestImpactMaintenanceOptions(t *testing.T) {
	in := francisInput()
	in.Maintenance = MaintenanceOptions{InventoryValue: 500000}
	assert.Equal(t, 2450.0, Impact(in).ExpectedMaintenance.InexactFloat64())
}

func TestMaintenanceOptionsValidate(t *testing.T) {
	neg := -0.1
	assert.NoError(t, MaintenanceOptions{}.Validate())
	assert.Error(t, MaintenanceOptions{Sigma: &neg}.Validate())
	assert.Error(t, MaintenanceOptions{InventoryValue: -1}.Validate())
}
