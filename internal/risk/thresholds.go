package risk

import "fmt"

// Thresholds holds every band limit used by the classifier.
type Thresholds struct {
	// Hoop stress safety factor: below Warning is WARNING, below Critical
	// is CRITICAL.
	SafetyFactorWarning  float64 `yaml:"safety_factor_warning"`
	SafetyFactorCritical float64 `yaml:"safety_factor_critical"`

	EccentricityWarning  float64 `yaml:"eccentricity_warning"`
	EccentricityCritical float64 `yaml:"eccentricity_critical"`

	AxialThrustWarningKN  float64 `yaml:"axial_thrust_warning_kn"`
	AxialThrustCriticalKN float64 `yaml:"axial_thrust_critical_kn"`

	// Leakage multipliers on design specific water consumption.
	LeakageDegrading float64 `yaml:"leakage_degrading"`
	LeakageCritical  float64 `yaml:"leakage_critical"`

	// ISO 10816 zone upper limits in mm/s (A/B, B/C, C/D boundaries).
	VibrationGood           float64 `yaml:"vibration_good"`
	VibrationSatisfactory   float64 `yaml:"vibration_satisfactory"`
	VibrationUnsatisfactory float64 `yaml:"vibration_unsatisfactory"`

	BearingTempWarning  float64 `yaml:"bearing_temp_warning"`
	BearingTempCritical float64 `yaml:"bearing_temp_critical"`

	// InsulationHealthy is the golden minimum in MΩ. Below it the winding
	// is degraded while still above RatedVoltageKV + 1 MΩ.
	InsulationHealthy     float64 `yaml:"insulation_healthy_mohm"`
	DefaultRatedVoltageKV float64 `yaml:"default_rated_voltage_kv"`

	AxialPlayMaxMM    float64 `yaml:"axial_play_max_mm"`
	AxialPlayWarning  float64 `yaml:"axial_play_warning"`
	AxialPlayCritical float64 `yaml:"axial_play_critical"`

	OverhaulMinorHours float64 `yaml:"overhaul_minor_hours"`
	OverhaulMajorHours float64 `yaml:"overhaul_major_hours"`

	StartStopLimit int64 `yaml:"start_stop_limit"`
}

// DefaultThresholds returns the built-in band limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SafetyFactorWarning:     2.0,
		SafetyFactorCritical:    1.5,
		EccentricityWarning:     0.70,
		EccentricityCritical:    0.80,
		AxialThrustWarningKN:    200,
		AxialThrustCriticalKN:   250,
		LeakageDegrading:        1.10,
		LeakageCritical:         1.25,
		VibrationGood:           2.3,
		VibrationSatisfactory:   4.5,
		VibrationUnsatisfactory: 7.1,
		BearingTempWarning:      65,
		BearingTempCritical:     80,
		InsulationHealthy:       100,
		DefaultRatedVoltageKV:   0.4,
		AxialPlayMaxMM:          0.5,
		AxialPlayWarning:        1.0,
		AxialPlayCritical:       1.5,
		OverhaulMinorHours:      25000,
		OverhaulMajorHours:      50000,
		StartStopLimit:          5000,
	}
}

// Validate checks that every escalating pair is ordered.
func (t Thresholds) Validate() error {
	switch {
	case t.SafetyFactorCritical <= 0 || t.SafetyFactorWarning < t.SafetyFactorCritical:
		return fmt.Errorf("safety_factor_critical must be > 0 and <= safety_factor_warning")
	case t.EccentricityWarning <= 0 || t.EccentricityCritical < t.EccentricityWarning:
		return fmt.Errorf("eccentricity_warning must be > 0 and <= eccentricity_critical")
	case t.AxialThrustWarningKN <= 0 || t.AxialThrustCriticalKN < t.AxialThrustWarningKN:
		return fmt.Errorf("axial_thrust_warning_kn must be > 0 and <= axial_thrust_critical_kn")
	case t.LeakageDegrading < 1 || t.LeakageCritical < t.LeakageDegrading:
		return fmt.Errorf("leakage_degrading must be >= 1 and <= leakage_critical")
	case t.VibrationGood <= 0 || t.VibrationSatisfactory < t.VibrationGood || t.VibrationUnsatisfactory < t.VibrationSatisfactory:
		return fmt.Errorf("vibration zones must be > 0 and ascending")
	case t.BearingTempWarning <= 0 || t.BearingTempCritical < t.BearingTempWarning:
		return fmt.Errorf("bearing_temp_warning must be > 0 and <= bearing_temp_critical")
	case t.InsulationHealthy <= 0 || t.DefaultRatedVoltageKV <= 0:
		return fmt.Errorf("insulation_healthy_mohm and default_rated_voltage_kv must be > 0")
	case t.AxialPlayMaxMM <= 0 || t.AxialPlayWarning <= 0 || t.AxialPlayCritical < t.AxialPlayWarning:
		return fmt.Errorf("axial play limits must be > 0 and ascending")
	case t.OverhaulMinorHours <= 0 || t.OverhaulMajorHours < t.OverhaulMinorHours:
		return fmt.Errorf("overhaul_minor_hours must be > 0 and <= overhaul_major_hours")
	case t.StartStopLimit <= 0:
		return fmt.Errorf("start_stop_limit must be > 0")
	}
	return nil
}

// ForTurbine narrows the Good vibration zone to a turbine type's own limit
// in mm/s. A limit of zero or one above VibrationGood leaves t unchanged.
func (t Thresholds) ForTurbine(vibrationMax float64) Thresholds {
	if vibrationMax > 0 && vibrationMax < t.VibrationGood {
		t.VibrationGood = vibrationMax
	}
	return t
}
