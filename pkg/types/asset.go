package types

import (
	"math"
	"time"
)

// AssetState is the aggregate per-turbine record. It is owned by the store;
// the engine receives it by value and returns a new value.
type AssetState struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	TurbineType TurbineType `yaml:"turbine_type" json:"turbine_type"`

	Hydraulic   Hydraulic   `yaml:"hydraulic" json:"hydraulic"`
	Mechanical  Mechanical  `yaml:"mechanical" json:"mechanical"`
	Site        Site        `yaml:"site" json:"site"`
	Penstock    Penstock    `yaml:"penstock" json:"penstock"`
	Pressures   Pressures   `yaml:"pressures" json:"pressures"`
	Operational Operational `yaml:"operational" json:"operational"`

	// Physics is the result of the last recomputation, nil before the first.
	Physics *PhysicsResult `yaml:"-" json:"physics,omitempty"`

	// Structural carries accumulated wear across recomputations.
	Structural StructuralMetrics `yaml:"structural" json:"structural"`

	Risk       RiskAssessment    `yaml:"-" json:"risk"`
	Financials *FinancialSummary `yaml:"-" json:"financials,omitempty"`

	// Simulation enables the potential-damage band of the financial model.
	Simulation bool `yaml:"simulation" json:"simulation"`

	UpdatedAt time.Time `yaml:"-" json:"updated_at"`
}

// Hydraulic is the hydraulic operating point.
type Hydraulic struct {
	HeadM   float64 `yaml:"head_m" json:"head_m"`
	FlowM3S float64 `yaml:"flow_m3s" json:"flow_m3s"`

	// Efficiency is either a percentage (92) or a ratio (0.92).
	// Values above 1 are treated as a percentage.
	Efficiency float64 `yaml:"efficiency" json:"efficiency"`

	// BaselinePowerMW is the reference output for performance delta and
	// lost-revenue calculations. Zero falls back to the engine default.
	BaselinePowerMW float64 `yaml:"baseline_power_mw" json:"baseline_power_mw"`
}

// Bolt describes the head-cover bolt set.
type Bolt struct {
	// Grade is the ISO 898-1 property class, e.g. "8.8" or "10.9".
	Grade      string  `yaml:"grade" json:"grade"`
	DiameterMM float64 `yaml:"diameter_mm" json:"diameter_mm"`
	Count      int     `yaml:"count" json:"count"`
}

// Oil is the latest lubricant analysis.
type Oil struct {
	WaterPPM float64 `yaml:"water_ppm" json:"water_ppm"`
	// TAN is the total acid number in mgKOH/g.
	TAN float64 `yaml:"tan" json:"tan"`
}

// Mechanical holds the mechanical sensor stream.
type Mechanical struct {
	VibrationXMMS float64 `yaml:"vibration_x_mms" json:"vibration_x_mms"`
	VibrationYMMS float64 `yaml:"vibration_y_mms" json:"vibration_y_mms"`
	RPM           float64 `yaml:"rpm" json:"rpm"`
	BearingTempC  float64 `yaml:"bearing_temp_c" json:"bearing_temp_c"`
	Bolt          Bolt    `yaml:"bolt" json:"bolt"`

	// InsulationMOhm is the generator winding insulation resistance.
	// Zero means not measured.
	InsulationMOhm float64 `yaml:"insulation_mohm" json:"insulation_mohm"`
	RatedVoltageKV float64 `yaml:"rated_voltage_kv" json:"rated_voltage_kv"`

	AxialPlayMM float64 `yaml:"axial_play_mm" json:"axial_play_mm"`
	Oil         Oil     `yaml:"oil" json:"oil"`
}

// Vibration returns the dominant vibration amplitude of the two axes.
func (m Mechanical) Vibration() float64 {
	return math.Max(math.Abs(m.VibrationXMMS), math.Abs(m.VibrationYMMS))
}

// Site holds grid and design-point data for the powerhouse.
type Site struct {
	GridFrequencyHz float64 `yaml:"grid_frequency_hz" json:"grid_frequency_hz"`
	DesignFlowM3S   float64 `yaml:"design_flow_m3s" json:"design_flow_m3s"`
	DesignPowerMW   float64 `yaml:"design_power_mw" json:"design_power_mw"`
}

// Penstock is the pressure pipe geometry and material.
type Penstock struct {
	DiameterM      float64 `yaml:"diameter_m" json:"diameter_m"`
	LengthM        float64 `yaml:"length_m" json:"length_m"`
	WallThicknessM float64 `yaml:"wall_thickness_m" json:"wall_thickness_m"`

	// Material selects the roughness: STEEL, GRP, PEHD or CONCRETE.
	Material          string  `yaml:"material" json:"material"`
	YieldStrengthMPa  float64 `yaml:"yield_strength_mpa" json:"yield_strength_mpa"`
	ElasticModulusGPa float64 `yaml:"elastic_modulus_gpa" json:"elastic_modulus_gpa"`
	RunnerDiameterMM  float64 `yaml:"runner_diameter_mm" json:"runner_diameter_mm"`
}

// Pressures are the unit's internal pressure and clearance readings.
type Pressures struct {
	SpiralCaseBar  float64 `yaml:"spiral_case_bar" json:"spiral_case_bar"`
	DraftTubeBar   float64 `yaml:"draft_tube_bar" json:"draft_tube_bar"`
	RunnerGapMM    float64 `yaml:"runner_gap_mm" json:"runner_gap_mm"`
	LabyrinthGapMM float64 `yaml:"labyrinth_gap_mm" json:"labyrinth_gap_mm"`
}

// Operational is the unit's duty history.
type Operational struct {
	HoursSinceOverhaul float64 `yaml:"hours_since_overhaul" json:"hours_since_overhaul"`
	StartStopCount     int64   `yaml:"start_stop_count" json:"start_stop_count"`
}
