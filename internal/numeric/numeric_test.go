package numeric

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func near(t *testing.T, want float64, got decimal.Decimal, eps float64) {
	t.Helper()
	assert.InDelta(t, want, got.InexactFloat64(), eps)
}

func TestDiv_ZeroDenominator(t *testing.T) {
	assert.True(t, Div(I(5), Zero).IsZero())
	assert.True(t, DivOr(I(5), Zero, One).Equal(One))
}

func TestDiv_KeepsSignificantDigits(t *testing.T) {
	got := Div(One, I(3))
	// the leading 3 sits one place below 10^0
	assert.Equal(t, int32(-(SignificantDigits + 1)), got.Exponent())
	assert.Equal(t, "0.3333333333333333333333333", got.String())

	cases := []struct {
		name string
		a, b decimal.Decimal
	}{
		{"micro", F(1.14e-6), I(3)},
		{"nano over large", F(2.5e-9), F(7.3e4)},
		{"large", I(10_000_000_000), I(3)},
		{"ratio below one", I(2), I(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Div(tc.a, tc.b)
			assert.GreaterOrEqual(t, q.NumDigits(), int(SignificantDigits), "%s", q)
			assert.LessOrEqual(t, q.Exponent(), -Precision)
		})
	}
}

func TestDiv_ZeroNumerator(t *testing.T) {
	assert.True(t, Div(Zero, F(1e-9)).IsZero())
}

func TestRound_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"2.675", "2.68"},
		{"1.004", "1"},
		{"15.0000", "15"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got := Round(decimal.RequireFromString(c.in), 2)
			assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "got %s", got)
		})
	}
}

func TestSqrt(t *testing.T) {
	near(t, 2, Sqrt(I(4)), 1e-18)
	near(t, math.Sqrt2, Sqrt(Two), 1e-15)
	assert.True(t, Sqrt(I(-4)).IsZero())
	assert.True(t, Sqrt(Zero).IsZero())
}

func TestLogAndExp(t *testing.T) {
	near(t, 2, Log10(I(100)), 1e-15)
	near(t, 0, Ln(One), 1e-18)
	assert.True(t, Ln(I(-1)).IsZero())
	near(t, math.E, Exp(One), 1e-15)
}

func TestPow(t *testing.T) {
	near(t, 8, Pow(Two, I(3)), 1e-18)
	near(t, math.Pow(6140350.877, 0.9), Pow(F(6140350.877), F(0.9)), 1e-3)
	assert.True(t, Pow(Zero, F(0.9)).IsZero())
	assert.True(t, Pow(Zero, Zero).Equal(One))
}

func TestTanh(t *testing.T) {
	near(t, math.Tanh(2), Tanh(Two), 1e-15)
	near(t, 0, Tanh(Zero), 1e-18)
	assert.True(t, Tanh(I(1000)).LessThanOrEqual(One))
	assert.True(t, Tanh(I(-1000)).GreaterThanOrEqual(One.Neg()))
}

func TestF_NonFinite(t *testing.T) {
	assert.True(t, F(math.NaN()).IsZero())
	assert.True(t, F(math.Inf(1)).IsZero())
}

func TestClamp(t *testing.T) {
	assert.True(t, Clamp(I(5), Zero, One).Equal(One))
	assert.True(t, Clamp(I(-5), Zero, One).Equal(Zero))
	assert.True(t, Clamp(F(0.5), Zero, One).Equal(F(0.5)))
}
