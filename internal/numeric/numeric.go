package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the minimum number of decimal places kept by every division
// and transcendental helper.
const Precision int32 = 24

// SignificantDigits is the minimum number of significant digits kept by
// every division, however small the quotient.
const SignificantDigits int32 = 24

// maxPlaces bounds the decimal places of a single division.
const maxPlaces int32 = 200

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Two     = decimal.NewFromInt(2)
	Hundred = decimal.NewFromInt(100)

	// Pi to 30 significant digits.
	Pi = decimal.RequireFromString("3.14159265358979323846264338328")

	ln10 = decimal.RequireFromString("2.30258509299404568401799145468")
)

// F converts a sensor float to a decimal. NaN and ±Inf become zero.
func F(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero
	}
	return decimal.NewFromFloat(f)
}

// I converts an integer to a decimal.
func I(i int64) decimal.Decimal {
	return decimal.NewFromInt(i)
}

// Float converts back to float64 for presentation and metrics.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Div returns a/b with at least SignificantDigits significant digits and
// at least Precision places, or zero when b is zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return DivOr(a, b, Zero)
}

// DivOr is Div with fallback returned when b is zero.
func DivOr(a, b, fallback decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return fallback
	}
	if a.IsZero() {
		return Zero
	}
	return a.DivRound(b, divPlaces(a, b))
}

// divPlaces returns the decimal places needed for SignificantDigits in a/b.
// The quotient's leading digit is at 10^(mag(a)-mag(b)) or one place below.
func divPlaces(a, b decimal.Decimal) int32 {
	places := SignificantDigits - (magnitude(a) - magnitude(b)) + 1
	switch {
	case places < Precision:
		return Precision
	case places > maxPlaces:
		return maxPlaces
	}
	return places
}

// magnitude is the power of ten of d's leading digit.
func magnitude(d decimal.Decimal) int32 {
	return int32(d.NumDigits()) + d.Exponent() - 1
}

// Round rounds half away from zero to the given number of places.
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Sqrt returns the square root via Newton iteration. Negative input
// returns zero.
func Sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return Zero
	}
	x := F(math.Sqrt(d.InexactFloat64()))
	if x.Sign() <= 0 {
		x = One
	}
	eps := decimal.New(1, -Precision)
	for i := 0; i < 64; i++ {
		next := x.Add(d.DivRound(x, Precision)).DivRound(Two, Precision)
		if next.Sub(x).Abs().LessThanOrEqual(eps) {
			return next
		}
		x = next
	}
	return x
}

// Ln returns the natural logarithm. Non-positive input returns zero.
func Ln(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return Zero
	}
	v, err := d.Ln(Precision)
	if err != nil {
		return Zero
	}
	return v
}

// Log10 returns the base-10 logarithm. Non-positive input returns zero.
func Log10(d decimal.Decimal) decimal.Decimal {
	return Div(Ln(d), ln10)
}

// Exp returns e^d.
func Exp(d decimal.Decimal) decimal.Decimal {
	v, err := d.ExpTaylor(Precision)
	if err != nil {
		return Zero
	}
	return v
}

// Pow returns x^y for real y as exp(y·ln x). Non-positive x returns zero,
// except that any x raised to zero is one.
func Pow(x, y decimal.Decimal) decimal.Decimal {
	if y.IsZero() {
		return One
	}
	if x.Sign() <= 0 {
		return Zero
	}
	if y.Equal(y.Truncate(0)) && y.Abs().LessThanOrEqual(I(64)) {
		return x.Pow(y).Round(Precision)
	}
	return Exp(y.Mul(Ln(x)))
}

// Tanh returns the hyperbolic tangent. Arguments are clamped to ±20, where
// tanh is 1 to well beyond Precision.
func Tanh(d decimal.Decimal) decimal.Decimal {
	limit := I(20)
	if d.GreaterThan(limit) {
		d = limit
	}
	if d.LessThan(limit.Neg()) {
		d = limit.Neg()
	}
	e2 := Exp(d.Mul(Two))
	return Div(e2.Sub(One), e2.Add(One))
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	return decimal.Max(a, b)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	return decimal.Min(a, b)
}
