package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// Axis names the orbit axis an amplitude correction applies to.
type Axis string

const (
	AxisNone Axis = ""
	AxisX    Axis = "x"
	AxisY    Axis = "y"
)

// Correction scales one vibration axis before eccentricity is computed.
// Impulse machines amplify X; axial-flow machines amplify Y.
type Correction struct {
	Axis   Axis
	Factor float64
}

// Coefficients are the per-type economic and geometric constants.
type Coefficients struct {
	RevenuePerMWh            float64 `yaml:"revenue_per_mwh" json:"revenue_per_mwh"`
	MaintenanceBaseCost      float64 `yaml:"maintenance_base_cost" json:"maintenance_base_cost"`
	InefficiencyTaxThreshold float64 `yaml:"inefficiency_tax_threshold" json:"inefficiency_tax_threshold"`
	NominalPowerMW           float64 `yaml:"nominal_power_mw" json:"nominal_power_mw"`
	RunnerDiameterM          float64 `yaml:"runner_diameter_m" json:"runner_diameter_m"`
}

// Thresholds are per-type vibration limits. Foundation and shaft limits are
// displacements in mm; VibrationMax is a velocity in mm/s.
type Thresholds struct {
	FoundationMax float64 `json:"foundation_max_mm"`
	ShaftMax      float64 `json:"shaft_max_mm"`
	VibrationMax  float64 `json:"vibration_max_mms"`
}

// Profile is the formula and coefficient bundle for one turbine type.
type Profile struct {
	Type         types.TurbineType
	Strategy     Strategy
	Coefficients Coefficients
	Correction   Correction
	Thresholds   Thresholds
}

var (
	defaultCoefficients = Coefficients{
		RevenuePerMWh:            85,
		MaintenanceBaseCost:      150000,
		InefficiencyTaxThreshold: 0.88,
		NominalPowerMW:           4.5,
		RunnerDiameterM:          1.0,
	}
	defaultThresholds = Thresholds{FoundationMax: 0.05, ShaftMax: 0.02, VibrationMax: 2.0}
)

// Default is the fallback profile for unmatched turbine types.
func Default() Profile {
	return Profile{
		Type:         types.TurbineUnknown,
		Strategy:     zeroStrategy{},
		Coefficients: defaultCoefficients,
		Thresholds:   defaultThresholds,
	}
}

func builtins() []Profile {
	return []Profile{
		{
			Type:         types.TurbineFrancis,
			Strategy:     francisStrategy{runnerDiameterM: defaultCoefficients.RunnerDiameterM},
			Coefficients: defaultCoefficients,
			Thresholds:   Thresholds{FoundationMax: 0.04, ShaftMax: 0.015, VibrationMax: 1.8},
		},
		{
			Type:     types.TurbineKaplan,
			Strategy: zeroStrategy{},
			Coefficients: Coefficients{
				RevenuePerMWh:            85,
				MaintenanceBaseCost:      180000,
				InefficiencyTaxThreshold: 0.90,
				NominalPowerMW:           8.0,
				RunnerDiameterM:          2.5,
			},
			Correction: Correction{Axis: AxisY, Factor: 1.1},
			Thresholds: defaultThresholds,
		},
		{
			Type:     types.TurbinePelton,
			Strategy: zeroStrategy{},
			Coefficients: Coefficients{
				RevenuePerMWh:            85,
				MaintenanceBaseCost:      120000,
				InefficiencyTaxThreshold: 0.86,
				NominalPowerMW:           12.0,
				RunnerDiameterM:          1.8,
			},
			Correction: Correction{Axis: AxisX, Factor: 1.2},
			Thresholds: defaultThresholds,
		},
		{
			Type:     types.TurbineCrossflow,
			Strategy: zeroStrategy{},
			Coefficients: Coefficients{
				RevenuePerMWh:            85,
				MaintenanceBaseCost:      60000,
				InefficiencyTaxThreshold: 0.78,
				NominalPowerMW:           1.0,
				RunnerDiameterM:          0.5,
			},
			Thresholds: defaultThresholds,
		},
	}
}

// Registry resolves turbine types to profiles. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	profiles map[types.TurbineType]Profile
}

// NewRegistry returns a registry preloaded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[types.TurbineType]Profile)}
	for _, p := range builtins() {
		r.profiles[p.Type] = p
	}
	return r
}

// Register adds or replaces the profile for p.Type.
func (r *Registry) Register(p Profile) {
	if p.Strategy == nil {
		p.Strategy = zeroStrategy{}
	}
	r.mu.Lock()
	r.profiles[p.Type] = p
	r.mu.Unlock()
}

// Lookup returns the profile for t, or Default when none is registered.
func (r *Registry) Lookup(t types.TurbineType) Profile {
	r.mu.RLock()
	p, ok := r.profiles[t]
	r.mu.RUnlock()
	if !ok {
		return Default()
	}
	return p
}

// Types returns the registered turbine types, sorted.
func (r *Registry) Types() []types.TurbineType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.TurbineType, 0, len(r.profiles))
	for t := range r.profiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ApplyOverrides merges coefficient overrides keyed by turbine type name.
// Zero fields keep the current value. Unknown type names and out-of-range
// values are rejected before anything is applied.
func (r *Registry) ApplyOverrides(overrides map[string]Coefficients) error {
	resolved := make(map[types.TurbineType]Coefficients, len(overrides))
	for name, c := range overrides {
		t := types.ParseTurbineType(name)
		if t == types.TurbineUnknown {
			return fmt.Errorf("profile: unknown turbine type %q", name)
		}
		if err := ValidateCoefficients(c); err != nil {
			return fmt.Errorf("profile: %s: %w", name, err)
		}
		resolved[t] = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for t, c := range resolved {
		p, ok := r.profiles[t]
		if !ok {
			p = Default()
			p.Type = t
		}
		p.Coefficients = merge(p.Coefficients, c)
		if fs, ok := p.Strategy.(francisStrategy); ok {
			fs.runnerDiameterM = p.Coefficients.RunnerDiameterM
			p.Strategy = fs
		}
		r.profiles[t] = p
	}
	return nil
}

// ValidateCoefficients rejects negative values and a tax threshold outside
// (0, 1]. Zero values mean "keep the current value".
func ValidateCoefficients(c Coefficients) error {
	switch {
	case c.RevenuePerMWh < 0:
		return fmt.Errorf("revenue_per_mwh must be >= 0")
	case c.MaintenanceBaseCost < 0:
		return fmt.Errorf("maintenance_base_cost must be >= 0")
	case c.InefficiencyTaxThreshold < 0 || c.InefficiencyTaxThreshold > 1:
		return fmt.Errorf("inefficiency_tax_threshold must be within [0, 1]")
	case c.NominalPowerMW < 0:
		return fmt.Errorf("nominal_power_mw must be >= 0")
	case c.RunnerDiameterM < 0:
		return fmt.Errorf("runner_diameter_m must be >= 0")
	}
	return nil
}

func merge(base, o Coefficients) Coefficients {
	if o.RevenuePerMWh > 0 {
		base.RevenuePerMWh = o.RevenuePerMWh
	}
	if o.MaintenanceBaseCost > 0 {
		base.MaintenanceBaseCost = o.MaintenanceBaseCost
	}
	if o.InefficiencyTaxThreshold > 0 {
		base.InefficiencyTaxThreshold = o.InefficiencyTaxThreshold
	}
	if o.NominalPowerMW > 0 {
		base.NominalPowerMW = o.NominalPowerMW
	}
	if o.RunnerDiameterM > 0 {
		base.RunnerDiameterM = o.RunnerDiameterM
	}
	return base
}
