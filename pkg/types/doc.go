// Package types defines the plain-data model shared by the engine, the
// service shell and the API. Values are passed and returned by value; no
// package mutates an AssetState it did not create.
//
// Physical quantities derived by the engine are decimal.Decimal so that
// safety-factor comparisons near classification boundaries are exact.
// Raw sensor inputs stay float64 and are converted once at the engine
// boundary.
package types
