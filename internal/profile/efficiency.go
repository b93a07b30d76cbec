package profile

import (
	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// TypicalEfficiency returns the expected peak efficiency in percent for a
// turbine type at the given head.
func TypicalEfficiency(t types.TurbineType, headM float64) decimal.Decimal {
	switch t {
	case types.TurbineFrancis:
		return numeric.I(92)
	case types.TurbineKaplan:
		if headM < 30 {
			return numeric.I(94)
		}
		return numeric.I(90)
	case types.TurbinePelton:
		switch {
		case headM >= 300:
			return numeric.I(91)
		case headM < 150:
			return numeric.I(85)
		}
		// linear between 85 % at 150 m and 91 % at 300 m
		frac := numeric.Div(numeric.F(headM).Sub(numeric.I(150)), numeric.I(150))
		return numeric.I(85).Add(frac.Mul(numeric.I(6)))
	case types.TurbineCrossflow:
		return numeric.I(82)
	default:
		return numeric.I(90)
	}
}
