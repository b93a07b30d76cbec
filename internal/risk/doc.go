// Package risk classifies an asset into NOMINAL, WARNING or CRITICAL and a
// 1–5 maintenance urgency.
//
// Every factor is evaluated independently against its own bands and the
// result is the worst case across factors: one CRITICAL factor dominates
// any number of nominal ones. Urgency aggregates the same way from a
// parallel per-factor urgency table.
package risk
