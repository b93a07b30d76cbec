// Package financial monetizes a recomputation: lost revenue, inefficiency
// tax, simulated damage exposure, maintenance buffer and expected cost,
// preventative savings, leakage cost and life-extension value.
//
// Impact is a pure function of its Input. Appraise is an independent
// investment appraisal (NPV, IRR, payback, ROI) for maintenance decisions.
package financial
