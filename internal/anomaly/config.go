package anomaly

import "fmt"

// Config holds window sizing, default baselines and detector thresholds.
type Config struct {
	WindowSize         int     `yaml:"window_size"`
	BaselineEfficiency float64 `yaml:"baseline_efficiency"`
	BaselinePowerMW    float64 `yaml:"baseline_power_mw"`

	// SilentLossDrop is the efficiency drop below baseline, in percentage
	// points, that counts as silent loss while power stays within
	// PowerStabilityMW of baseline.
	SilentLossDrop    float64 `yaml:"silent_loss_drop"`
	SilentLossCeiling float64 `yaml:"silent_loss_ceiling"`
	PowerStabilityMW  float64 `yaml:"power_stability_mw"`

	CavitationDrop        float64 `yaml:"cavitation_drop"`
	CavitationCeiling     float64 `yaml:"cavitation_ceiling"`
	CavitationVibIncrease float64 `yaml:"cavitation_vibration_increase"`

	// ThermalRate is in °C per hour, measured oldest to newest sample.
	ThermalRate        float64 `yaml:"thermal_rate"`
	ThermalCeiling     float64 `yaml:"thermal_ceiling"`
	ThermalMinElapsedH float64 `yaml:"thermal_min_elapsed_hours"`

	DriftDrop    float64 `yaml:"drift_drop"`
	DriftCeiling float64 `yaml:"drift_ceiling"`
}

// DefaultConfig returns the built-in detector configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:            10,
		BaselineEfficiency:    92,
		BaselinePowerMW:       10,
		SilentLossDrop:        2.0,
		SilentLossCeiling:     10,
		PowerStabilityMW:      0.5,
		CavitationDrop:        5.0,
		CavitationCeiling:     15,
		CavitationVibIncrease: 1.5,
		ThermalRate:           10.0,
		ThermalCeiling:        30,
		ThermalMinElapsedH:    0.01,
		DriftDrop:             1.0,
		DriftCeiling:          5,
	}
}

// Validate checks that every ceiling lies above its threshold.
func (c Config) Validate() error {
	switch {
	case c.WindowSize < 2:
		return fmt.Errorf("window_size must be >= 2")
	case c.SilentLossCeiling <= c.SilentLossDrop:
		return fmt.Errorf("silent_loss_ceiling must be > silent_loss_drop")
	case c.CavitationCeiling <= c.CavitationDrop:
		return fmt.Errorf("cavitation_ceiling must be > cavitation_drop")
	case c.ThermalCeiling <= c.ThermalRate:
		return fmt.Errorf("thermal_ceiling must be > thermal_rate")
	case c.DriftCeiling <= c.DriftDrop:
		return fmt.Errorf("drift_ceiling must be > drift_drop")
	case c.PowerStabilityMW < 0 || c.ThermalMinElapsedH <= 0:
		return fmt.Errorf("power_stability_mw must be >= 0 and thermal_min_elapsed_hours > 0")
	}
	return nil
}
