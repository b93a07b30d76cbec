package types

import "github.com/shopspring/decimal"

// PhysicsResult is the derived physical snapshot of one recomputation.
// It is recreated on every tick.
type PhysicsResult struct {
	VelocityMS      decimal.Decimal `json:"velocity_ms"`
	WaveSpeedMS     decimal.Decimal `json:"wave_speed_ms"`
	Reynolds        decimal.Decimal `json:"reynolds"`
	FrictionFactor  decimal.Decimal `json:"friction_factor"`
	HeadLossM       decimal.Decimal `json:"head_loss_m"`
	NetHeadM        decimal.Decimal `json:"net_head_m"`
	StaticPressure  decimal.Decimal `json:"static_pressure_bar"`
	SurgePressure   decimal.Decimal `json:"surge_pressure_bar"`
	HoopStressMPa   decimal.Decimal `json:"hoop_stress_mpa"`
	HoopSafety      decimal.Decimal `json:"hoop_safety_factor"`
	PowerMW         decimal.Decimal `json:"power_mw"`
	PerformanceDiff decimal.Decimal `json:"performance_delta_pct"`
	PerformanceGap  decimal.Decimal `json:"performance_gap_pct"`

	// TypicalEfficiency is the turbine type's expected peak efficiency in
	// percent at this head; EfficiencyGap is how far the unit runs below it.
	TypicalEfficiency decimal.Decimal `json:"typical_efficiency_pct"`
	EfficiencyGap     decimal.Decimal `json:"efficiency_gap_pct"`
	SpecificSpeed     decimal.Decimal `json:"specific_speed"`

	Eccentricity    decimal.Decimal `json:"eccentricity"`
	AxialThrustKN   decimal.Decimal `json:"axial_thrust_kn"`
	VolumetricLoss  decimal.Decimal `json:"volumetric_loss_pct"`
	SpecificWater   decimal.Decimal `json:"specific_water_consumption"`
	DesignWater     decimal.Decimal `json:"design_specific_water_consumption"`
	BoltLoadKN      decimal.Decimal `json:"bolt_load_kn"`
	BoltCapacityKN  decimal.Decimal `json:"bolt_capacity_kn"`
	BoltSafety      decimal.Decimal `json:"bolt_safety_factor"`
	Leakage         LeakageStatus   `json:"leakage_status"`
	Status          Status          `json:"status"`
}

// StructuralMetrics is the cumulative wear state. It is the only engine
// state that persists across recomputations.
type StructuralMetrics struct {
	// WearIndex is in [0, 100] and never decreases except on reset.
	WearIndex     decimal.Decimal `yaml:"wear_index" json:"wear_index"`
	RemainingLife decimal.Decimal `yaml:"remaining_life" json:"remaining_life"`
	FatigueCycles int64           `yaml:"fatigue_cycles" json:"fatigue_cycles"`

	// DRF is the normalised dynamic risk factor in [0, 100].
	DRF decimal.Decimal `yaml:"drf" json:"drf"`

	YearlyWearPct decimal.Decimal `yaml:"yearly_wear_pct" json:"yearly_wear_pct"`

	// LongevityLeakYears is design life lost to accelerated aging.
	LongevityLeakYears decimal.Decimal `yaml:"longevity_leak_years" json:"longevity_leak_years"`
}

// RiskFactor is one contributor to a RiskAssessment.
type RiskFactor struct {
	Name    string          `json:"name"`
	Status  Status          `json:"status"`
	Urgency int             `json:"urgency"`
	Value   decimal.Decimal `json:"value"`
	Band    string          `json:"band,omitempty"`
}

// RiskAssessment is the worst-case aggregation of all risk factors.
type RiskAssessment struct {
	Status  Status       `json:"status"`
	Urgency int          `json:"urgency"`
	Factors []RiskFactor `json:"factors,omitempty"`
}

// FinancialSummary monetizes one recomputation.
type FinancialSummary struct {
	PricePerMWh          decimal.Decimal `json:"price_per_mwh"`
	LostRevenueHourly    decimal.Decimal `json:"lost_revenue_hourly"`
	LostRevenueAnnual    decimal.Decimal `json:"lost_revenue_annual"`
	Projection30Day      decimal.Decimal `json:"projection_30d"`
	InefficiencyTax      decimal.Decimal `json:"inefficiency_tax"`
	PotentialDamage      decimal.Decimal `json:"potential_damage"`
	RiskScore            decimal.Decimal `json:"risk_score"`
	MaintenanceBuffer    decimal.Decimal `json:"maintenance_buffer"`
	ExpectedMaintenance  decimal.Decimal `json:"expected_maintenance_cost"`
	PreventativeSavings  decimal.Decimal `json:"preventative_savings"`
	LeakageCost          decimal.Decimal `json:"leakage_cost"`
	LifeExtensionSavings decimal.Decimal `json:"life_extension_savings"`
	TotalExposure        decimal.Decimal `json:"total_exposure"`
}
