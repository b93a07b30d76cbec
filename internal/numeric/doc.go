// Package numeric is the decimal substrate every engine calculation routes
// through. It wraps github.com/shopspring/decimal with a fixed division
// precision and guarded helpers for roots, logarithms and exponentials.
//
// Rounding is half away from zero (round-half-up for the non-negative
// magnitudes the engine deals in). No helper panics or produces NaN or
// Infinity: degenerate arguments return a defined fallback, usually zero.
package numeric
