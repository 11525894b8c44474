// Package adjustment implements the TAL rent adjustment formulas. Every
// function is pure: degenerate inputs resolve to a zero adjustment instead of
// an error.
package adjustment

import (
	"github.com/iwvelando/tal-calculator/pkg/mathutil"
)

// Subtotal is the unit count and monthly rent total of a group of units.
type Subtotal struct {
	Count            int     `json:"count"`
	MonthlyRentTotal float64 `json:"monthlyRentTotal"`
}

// Add returns the sum of two subtotals.
func (s Subtotal) Add(other Subtotal) Subtotal {
	return Subtotal{
		Count:            s.Count + other.Count,
		MonthlyRentTotal: s.MonthlyRentTotal + other.MonthlyRentTotal,
	}
}

// AverageMonthlyRent is the mean monthly rent of the group, 0 when empty.
func (s Subtotal) AverageMonthlyRent() float64 {
	return mathutil.SafeDivide(s.MonthlyRentTotal, float64(s.Count))
}

// RentSplit carries the whole-building dwelling and non-residential
// subtotals that per-line allocations are weighted against.
type RentSplit struct {
	Dwellings      Subtotal `json:"dwellings"`
	NonResidential Subtotal `json:"nonResidential"`
}

// AnnualRents is the building's rent roll on an annual basis.
func (r RentSplit) AnnualRents() float64 {
	return mathutil.Annualize(r.Dwellings.MonthlyRentTotal + r.NonResidential.MonthlyRentTotal)
}

// AnnualBuildingRevenue is the annual rent roll plus other operating revenue,
// both entered as monthly figures.
func AnnualBuildingRevenue(split RentSplit, otherOperatingRevenue float64) float64 {
	return split.AnnualRents() + mathutil.Annualize(otherOperatingRevenue)
}

// Weight is the fraction of an annual building figure attributable to a
// dwelling paying currentMonthlyRent. It is 0 when the revenue base is 0 and
// is not capped at 1.
func Weight(currentMonthlyRent, totalAnnualBuildingRevenue float64) float64 {
	return mathutil.SafeDivide(mathutil.Annualize(currentMonthlyRent), totalAnnualBuildingRevenue)
}
