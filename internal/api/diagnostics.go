package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/internal/risk"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// DiagnosticHint is one plain-English insight about an asset's condition.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level  string `json:"level"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// factorAdvice holds the chip title and the suggested action for each risk
// factor.
var factorAdvice = map[string][2]string{
	risk.FactorSafety: {"Penstock hoop stress",
		"Pressure surges are eating into the penstock wall margin. Review closure times of the guide vanes and check the surge tank level."},
	risk.FactorEccentricity: {"Runner eccentricity",
		"The runner is running off-centre. Check the guide bearing clearances and look for uneven labyrinth wear."},
	risk.FactorAxialThrust: {"Axial thrust",
		"Net hydraulic thrust on the thrust bearing is high. Compare spiral case and draft tube pressures and inspect the balancing holes."},
	risk.FactorLeakage: {"Water leakage",
		"The unit needs more water per MWh than its design point. Worn labyrinth seals or wicket gate leakage are the usual causes."},
	risk.FactorVibration: {"Vibration",
		"Shaft vibration is outside the comfortable ISO 10816 zone. Check balance, alignment and bearing condition before it grows."},
	risk.FactorBearingTemp: {"Bearing temperature",
		"The guide bearing is running hot. Check the oil cooler flow and the oil analysis for water ingress."},
	risk.FactorInsulation: {"Winding insulation",
		"Generator insulation resistance is low for its rated voltage. Plan a polarization index test and dry-out."},
	risk.FactorAxialPlay: {"Axial play",
		"Shaft axial play exceeds its tolerance. Inspect the thrust bearing pads and the shaft coupling."},
	risk.FactorOverhaul: {"Overhaul due",
		"Running hours since the last overhaul have passed the planned interval. Schedule the outage before wear compounds."},
	risk.FactorStartStop: {"Start/stop cycling",
		"The unit has cycled more than its design budget. Each start adds thermal and fatigue load to the runner."},
}

// computeDiagnostics derives human-readable hints from an asset state.
// Hints are ordered critical first, then warnings, then info.
func computeDiagnostics(st types.AssetState, availability float64) []DiagnosticHint {
	var hints []DiagnosticHint

	if availability < 100 {
		v := availability
		level := "info"
		switch {
		case availability < 70:
			level = "critical"
		case availability < 90:
			level = "warning"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "availability",
			Level: level,
			Title: fmt.Sprintf("%.0f%% telemetry", availability),
			Detail: fmt.Sprintf(
				"The gateway answered %.0f%% of recent scrape attempts (last 20 tracked). "+
					"While it is unreachable the figures below come from the last good sample.",
				availability,
			),
			Value: &v,
		})
	}

	if st.Physics == nil {
		hints = append(hints, DiagnosticHint{
			Key:   "warming_up",
			Level: "info",
			Title: "Awaiting first evaluation",
			Detail: "No physics snapshot has been computed for this turbine yet. " +
				"It will appear after the next telemetry sample. No action needed.",
		})
		return sortHints(hints)
	}

	for _, f := range st.Risk.Factors {
		if f.Status == types.StatusNominal {
			continue
		}
		v := numeric.Float(f.Value)
		title, advice := f.Name, ""
		if a, ok := factorAdvice[f.Name]; ok {
			title, advice = a[0], a[1]
		}
		if f.Band != "" {
			title = fmt.Sprintf("%s (%s)", title, f.Band)
		}
		hints = append(hints, DiagnosticHint{
			Key:    f.Name,
			Level:  strings.ToLower(string(f.Status)),
			Title:  title,
			Detail: fmt.Sprintf("Measured %.2f, urgency %d of 5. %s", v, f.Urgency, advice),
			Value:  &v,
		})
	}

	if life := numeric.Float(st.Structural.RemainingLife); life < 20 {
		level := "warning"
		if life < 5 {
			level = "critical"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "remaining_life",
			Level: level,
			Title: fmt.Sprintf("%.1f%% life left", life),
			Detail: fmt.Sprintf(
				"Accumulated fatigue and cavitation wear leave %.1f%% of design life. "+
					"Each pressure surge shortens it further; plan the runner refurbishment now.",
				life,
			),
			Value: &life,
		})
	}

	if f := st.Financials; f != nil && f.TotalExposure.IsPositive() {
		v := numeric.Float(f.TotalExposure)
		hints = append(hints, DiagnosticHint{
			Key:   "exposure",
			Level: "info",
			Title: "Financial exposure",
			Detail: fmt.Sprintf(
				"Lost revenue, inefficiency and leakage add up to %.0f per year at the current operating point.",
				v,
			),
			Value: &v,
		})
	}

	if len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "healthy",
			Level:  "ok",
			Title:  "All clear",
			Detail: "Every risk factor is nominal and telemetry is flowing. Keep an eye on the efficiency trend.",
		})
	}
	return sortHints(hints)
}

func levelRank(l string) int {
	switch l {
	case "critical":
		return 0
	case "warning":
		return 1
	case "info":
		return 2
	default:
		return 3
	}
}

func sortHints(h []DiagnosticHint) []DiagnosticHint {
	sort.SliceStable(h, func(i, j int) bool { return levelRank(h[i].Level) < levelRank(h[j].Level) })
	return h
}
