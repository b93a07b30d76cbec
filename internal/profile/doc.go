// Package profile is the turbine profile registry. A Profile bundles the
// per-type formula strategy (axial thrust, volumetric loss), the revenue
// and maintenance coefficients, the orbit axis correction and the
// vibration threshold overrides for one turbine family.
//
// Lookup never fails: a type with no registered profile resolves to
// Default, whose strategy returns zero for both formulas.
package profile
