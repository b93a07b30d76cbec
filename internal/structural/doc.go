// Package structural is the cumulative wear and fatigue model.
//
// Advance folds one recomputation tick into the previous StructuralMetrics
// and returns the new value. The dynamic risk factor (DRF) follows the 48%
// rule: vibration intensity relative to the ISO "good" limit accelerates
// aging linearly below 0.48 and cubically above it. The yearly wear rate is
// spread over hours-per-year ticks, so one tick equals one operating hour.
//
// Simulated scenarios inject discrete fatigue cycles and wear, scaled by the
// grid stress factor. Wear never decreases; only Reset starts over.
package structural
