package anomaly

import (
	"fmt"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// rule inspects a window whose last element is the current sample. It
// returns nil when its preconditions or thresholds are not met.
type rule func(cfg Config, base baseline, window []types.TelemetrySnapshot) *types.DetectedAnomaly

// rules in priority order.
var rules = []rule{silentLoss, cavitation, thermalRunaway, efficiencyDrift}

// silentLoss flags an efficiency drop with unchanged load: a slow flow
// obstruction such as a clogging trash rack.
func silentLoss(cfg Config, base baseline, window []types.TelemetrySnapshot) *types.DetectedAnomaly {
	cur := window[len(window)-1]
	drop := base.efficiency - cur.Efficiency
	powerDelta := abs(cur.PowerMW - base.powerMW)
	if drop <= cfg.SilentLossDrop || powerDelta >= cfg.PowerStabilityMW {
		return nil
	}

	p := Probability(drop, cfg.SilentLossDrop, cfg.SilentLossCeiling)
	sev := types.SeverityLow
	switch {
	case p > 80:
		sev = types.SeverityHigh
	case p > 50:
		sev = types.SeverityMedium
	}
	return &types.DetectedAnomaly{
		Type:        types.AnomalySilentLoss,
		Severity:    sev,
		Probability: p,
		Description: fmt.Sprintf("Efficiency dropped %.1f%% while power remained stable. Possible trash rack obstruction.", drop),
		Evidence: types.Evidence{
			Baseline: map[string]float64{"efficiency": base.efficiency, "power_mw": base.powerMW},
			Current:  map[string]float64{"efficiency": cur.Efficiency, "power_mw": cur.PowerMW},
			Delta:    map[string]float64{"efficiency": -drop, "power_mw": powerDelta},
		},
	}
}

// cavitation flags a sharp sample-to-sample efficiency drop accompanied by
// a vibration rise.
func cavitation(cfg Config, _ baseline, window []types.TelemetrySnapshot) *types.DetectedAnomaly {
	if len(window) < 2 {
		return nil
	}
	prev, cur := window[len(window)-2], window[len(window)-1]
	drop := prev.Efficiency - cur.Efficiency
	vib := cur.VibrationMMS - prev.VibrationMMS
	if drop <= cfg.CavitationDrop || vib <= cfg.CavitationVibIncrease {
		return nil
	}
	return &types.DetectedAnomaly{
		Type:        types.AnomalyCavitation,
		Severity:    types.SeverityCritical,
		Probability: Probability(drop, cfg.CavitationDrop, cfg.CavitationCeiling),
		Description: fmt.Sprintf("Cavitation detected: efficiency down %.1f%%, vibration up %.2f mm/s", drop, vib),
		Evidence: types.Evidence{
			Baseline: map[string]float64{"efficiency": prev.Efficiency, "vibration_mms": prev.VibrationMMS},
			Current:  map[string]float64{"efficiency": cur.Efficiency, "vibration_mms": cur.VibrationMMS},
			Delta:    map[string]float64{"efficiency": -drop, "vibration_mms": vib},
		},
	}
}

// thermalRunaway flags a bearing temperature rising faster than the
// configured rate across the whole window.
func thermalRunaway(cfg Config, _ baseline, window []types.TelemetrySnapshot) *types.DetectedAnomaly {
	if len(window) < 2 {
		return nil
	}
	oldest, newest := window[0], window[len(window)-1]
	hours := newest.Timestamp.Sub(oldest.Timestamp).Hours()
	if hours < cfg.ThermalMinElapsedH {
		return nil
	}
	rise := newest.BearingTempC - oldest.BearingTempC
	rate := rise / hours
	if rate <= cfg.ThermalRate {
		return nil
	}
	return &types.DetectedAnomaly{
		Type:        types.AnomalyThermalRunaway,
		Severity:    types.SeverityCritical,
		Probability: Probability(rate, cfg.ThermalRate, cfg.ThermalCeiling),
		Description: fmt.Sprintf("Bearing temperature rising %.1f°C/hr", rate),
		Evidence: types.Evidence{
			Baseline: map[string]float64{"bearing_temp_c": oldest.BearingTempC},
			Current:  map[string]float64{"bearing_temp_c": newest.BearingTempC},
			Delta:    map[string]float64{"bearing_temp_c": rise, "rate_c_per_hour": rate, "elapsed_hours": hours},
		},
	}
}

// efficiencyDrift compares the mean efficiency of the older and newer halves
// of a full window.
func efficiencyDrift(cfg Config, _ baseline, window []types.TelemetrySnapshot) *types.DetectedAnomaly {
	if len(window) < cfg.WindowSize {
		return nil
	}
	half := len(window) / 2
	older := meanEfficiency(window[:half])
	newer := meanEfficiency(window[len(window)-half:])
	drop := older - newer
	if drop <= cfg.DriftDrop {
		return nil
	}

	p := Probability(drop, cfg.DriftDrop, cfg.DriftCeiling)
	sev := types.SeverityLow
	if p > 50 {
		sev = types.SeverityMedium
	}
	return &types.DetectedAnomaly{
		Type:        types.AnomalyEfficiencyDrift,
		Severity:    sev,
		Probability: p,
		Description: fmt.Sprintf("Efficiency drifted down %.1f%% across the window", drop),
		Evidence: types.Evidence{
			Baseline: map[string]float64{"efficiency": older},
			Current:  map[string]float64{"efficiency": newer},
			Delta:    map[string]float64{"efficiency": -drop},
		},
	}
}

func meanEfficiency(s []types.TelemetrySnapshot) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v.Efficiency
	}
	return sum / float64(len(s))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
