package financial

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/internal/numeric"
)

// Criteria describe a maintenance investment.
type Criteria struct {
	InitialInvestment float64   `json:"initial_investment"`
	AnnualCashFlows   []float64 `json:"annual_cash_flows"`
	DiscountRate      float64   `json:"discount_rate"`
	SalvageValue      float64   `json:"salvage_value"`
}

// Year is one row of the NPV breakdown.
type Year struct {
	Year          int             `json:"year"`
	CashFlow      decimal.Decimal `json:"cash_flow"`
	PresentValue  decimal.Decimal `json:"present_value"`
	CumulativeNPV decimal.Decimal `json:"cumulative_npv"`
}

// Appraisal is the result of Appraise.
type Appraisal struct {
	NPV               decimal.Decimal `json:"npv"`
	TotalPresentValue decimal.Decimal `json:"total_present_value"`
	Accept            bool            `json:"accept"`

	// PaybackYears is -1 when the investment is never recovered.
	PaybackYears decimal.Decimal `json:"payback_years"`

	// IRR is nil when Newton–Raphson cannot converge.
	IRR    *decimal.Decimal `json:"irr,omitempty"`
	ROIPct decimal.Decimal  `json:"roi_pct"`
	Years  []Year           `json:"years"`
}

// Appraise discounts the cash flows, adds the salvage value in the final
// year and derives payback, IRR and ROI.
func Appraise(c Criteria) Appraisal {
	r := numeric.F(c.DiscountRate)
	inv := numeric.F(c.InitialInvestment)

	var a Appraisal
	total := numeric.Zero
	for i, cf := range c.AnnualCashFlows {
		year := i + 1
		pv := presentValue(numeric.F(cf), r, year)
		if year == len(c.AnnualCashFlows) && c.SalvageValue > 0 {
			pv = pv.Add(presentValue(numeric.F(c.SalvageValue), r, year))
		}
		total = total.Add(pv)
		a.Years = append(a.Years, Year{
			Year:          year,
			CashFlow:      numeric.F(cf),
			PresentValue:  pv,
			CumulativeNPV: total.Sub(inv),
		})
	}

	a.TotalPresentValue = total
	a.NPV = total.Sub(inv)
	a.Accept = a.NPV.IsPositive()
	a.PaybackYears = Payback(c.InitialInvestment, c.AnnualCashFlows)

	flows := append([]float64(nil), c.AnnualCashFlows...)
	if c.SalvageValue > 0 && len(flows) > 0 {
		flows[len(flows)-1] += c.SalvageValue
	}
	if irr, ok := IRR(c.InitialInvestment, flows); ok {
		a.IRR = &irr
	}

	if inv.IsPositive() {
		ret := numeric.F(c.SalvageValue)
		for _, cf := range c.AnnualCashFlows {
			ret = ret.Add(numeric.F(cf))
		}
		a.ROIPct = numeric.Div(ret.Sub(inv), inv).Mul(numeric.Hundred)
	}
	return a
}

// NPV discounts flows (year 1 onwards) and the final-year salvage value at
// rate and subtracts the investment.
func NPV(rate, investment float64, flows []float64, salvage float64) decimal.Decimal {
	r := numeric.F(rate)
	total := numeric.Zero
	for i, cf := range flows {
		total = total.Add(presentValue(numeric.F(cf), r, i+1))
	}
	if salvage > 0 && len(flows) > 0 {
		total = total.Add(presentValue(numeric.F(salvage), r, len(flows)))
	}
	return total.Sub(numeric.F(investment))
}

// Payback returns the interpolated number of years until cumulative cash
// flow covers the investment, or -1 if it never does.
func Payback(investment float64, flows []float64) decimal.Decimal {
	inv := numeric.F(investment)
	cum := numeric.Zero
	for i, cf := range flows {
		f := numeric.F(cf)
		prev := cum
		cum = cum.Add(f)
		if cum.GreaterThanOrEqual(inv) {
			return numeric.I(int64(i)).Add(numeric.Div(inv.Sub(prev), f))
		}
	}
	return numeric.I(-1)
}

// IRR finds the rate where NPV is zero by Newton–Raphson, starting at 10%.
// It reports false when the derivative vanishes or the rate leaves (-1, 2).
func IRR(investment float64, flows []float64) (decimal.Decimal, bool) {
	const maxIterations = 100
	tolerance := numeric.F(0.0001)
	lo, hi := numeric.I(-1), numeric.Two

	rate := numeric.F(0.1)
	for i := 0; i < maxIterations; i++ {
		npv, deriv := npvAt(investment, flows, rate)
		if npv.Abs().LessThan(tolerance) {
			return rate, true
		}
		if deriv.Abs().LessThan(tolerance) {
			return numeric.Zero, false
		}
		next := rate.Sub(numeric.Div(npv, deriv))
		if next.LessThanOrEqual(lo) || next.GreaterThanOrEqual(hi) {
			return numeric.Zero, false
		}
		rate = next
	}
	return rate, true
}

// npvAt returns NPV and dNPV/dr at rate.
func npvAt(investment float64, flows []float64, rate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	npv := numeric.F(investment).Neg()
	deriv := numeric.Zero
	base := numeric.One.Add(rate)
	for i, cf := range flows {
		t := int64(i + 1)
		f := numeric.F(cf)
		npv = npv.Add(numeric.Div(f, numeric.Pow(base, numeric.I(t))))
		deriv = deriv.Sub(numeric.Div(f.Mul(numeric.I(t)), numeric.Pow(base, numeric.I(t+1))))
	}
	return npv, deriv
}

func presentValue(cf, rate decimal.Decimal, year int) decimal.Decimal {
	return numeric.Div(cf, numeric.Pow(numeric.One.Add(rate), numeric.I(int64(year))))
}

// Defaults for AnalyzeMaintenance.
const (
	DefaultDiscountRate  = 0.08
	DefaultAnalysisYears = 10
)

var (
	// failureProbability is the annual chance of the avoided failure once
	// maintenance is done.
	failureProbability = numeric.F(0.1)
	// Deferred maintenance adds 10% failure probability each year, up to
	// failureCeiling.
	failureCeiling = numeric.F(0.5)
)

// MaintenanceCase describes a proposed overhaul.
type MaintenanceCase struct {
	MaintenanceCost    float64 `json:"maintenance_cost"`
	AvoidedFailureCost float64 `json:"avoided_failure_cost"`
	ExtendedLifeYears  float64 `json:"extended_life_years"`
	// EfficiencyGain in percent.
	EfficiencyGain    float64 `json:"efficiency_gain"`
	EnergyPricePerMWh float64 `json:"energy_price_per_mwh"`
	PowerMW           float64 `json:"power_mw"`
}

// Recommendation is the outcome of AnalyzeMaintenance.
type Recommendation string

const (
	RecommendMaintenance Recommendation = "MAINTENANCE"
	RecommendDefer       Recommendation = "DEFER"
)

// MaintenanceAnalysis compares doing the maintenance against doing nothing.
type MaintenanceAnalysis struct {
	Maintenance     Appraisal       `json:"maintenance"`
	DoNothing       Appraisal       `json:"do_nothing"`
	Recommendation  Recommendation  `json:"recommendation"`
	NetBenefit      decimal.Decimal `json:"net_benefit"`
	EfficiencyValue decimal.Decimal `json:"efficiency_value_over_life"`
}

// AnalyzeMaintenance appraises a maintenance case over years at rate.
//
// The maintenance scenario earns the efficiency gain every year plus the
// probability-weighted avoided failure, pays the maintenance cost in year 1
// and books the extended life as efficiency value in the final year. The
// do-nothing scenario only carries failure cost at a probability rising
// 10% a year. Zero rate or years use the defaults.
func AnalyzeMaintenance(mc MaintenanceCase, rate float64, years int) MaintenanceAnalysis {
	if rate == 0 {
		rate = DefaultDiscountRate
	}
	if years <= 0 {
		years = DefaultAnalysisYears
	}

	gain := numeric.Div(numeric.F(mc.EfficiencyGain), numeric.Hundred)
	annualValue := numeric.F(mc.PowerMW).Mul(gain).Mul(hoursPerYear).Mul(numeric.F(mc.EnergyPricePerMWh))
	avoided := numeric.F(mc.AvoidedFailureCost)

	withFlows := make([]float64, years)
	noneFlows := make([]float64, years)
	for i := range withFlows {
		cf := annualValue.Add(avoided.Mul(failureProbability))
		if i == 0 {
			cf = cf.Sub(numeric.F(mc.MaintenanceCost))
		}
		withFlows[i] = numeric.Float(cf)

		p := numeric.Min(failureProbability.Mul(numeric.I(int64(i+1))), failureCeiling)
		noneFlows[i] = numeric.Float(avoided.Mul(p).Neg())
	}
	withFlows[years-1] += numeric.Float(numeric.F(mc.ExtendedLifeYears).Mul(annualValue))

	var a MaintenanceAnalysis
	a.Maintenance = Appraise(Criteria{AnnualCashFlows: withFlows, DiscountRate: rate})
	a.DoNothing = Appraise(Criteria{AnnualCashFlows: noneFlows, DiscountRate: rate})
	a.NetBenefit = a.Maintenance.NPV.Sub(a.DoNothing.NPV)
	a.Recommendation = RecommendDefer
	if a.NetBenefit.IsPositive() {
		a.Recommendation = RecommendMaintenance
	}
	a.EfficiencyValue = annualValue.Mul(numeric.I(int64(years)))
	return a
}

// ErrNoEnergy is returned by LCOE when the discounted energy is zero.
var ErrNoEnergy = errors.New("financial: no energy produced over the lifetime")

// LCOE is the levelized cost of energy: the investment plus discounted O&M
// divided by discounted energy, in currency per MWh.
func LCOE(investment, annualOM, annualEnergyMWh float64, years int, rate float64) (decimal.Decimal, error) {
	r := numeric.F(rate)
	om, energy := numeric.Zero, numeric.Zero
	for y := 1; y <= years; y++ {
		om = om.Add(presentValue(numeric.F(annualOM), r, y))
		energy = energy.Add(presentValue(numeric.F(annualEnergyMWh), r, y))
	}
	if !energy.IsPositive() {
		return numeric.Zero, ErrNoEnergy
	}
	return numeric.Div(numeric.F(investment).Add(om), energy), nil
}
