package adjustment

import (
	"github.com/iwvelando/tal-calculator/pkg/mathutil"
)

// Base is the section 1 adjustment: the current rent indexed by the CPI rate.
// The caller rounds it with the other monetary outputs.
func Base(currentMonthlyRent, cpiRate float64) float64 {
	return currentMonthlyRent * cpiRate
}

// TaxOrInsurance is the section 2 adjustment for one expense category.
//
// A decrease is passed through in full. An increase only counts for the part
// above cpiRate × prior. Without a prior figure there is no baseline and the
// adjustment is 0. The result is rounded to cents.
func TaxOrInsurance(current, prior, weight, cpiRate float64) float64 {
	if prior == 0 {
		return 0
	}

	variation := current - prior
	if variation < 0 {
		return mathutil.Round(mathutil.Monthly(variation * weight))
	}

	threshold := cpiRate * prior
	if variation <= threshold {
		return 0
	}

	return mathutil.Round(mathutil.Monthly((variation - threshold) * weight))
}

// TaxesBreakdown holds the section 2 adjustment of each category.
type TaxesBreakdown struct {
	MunicipalTaxes float64 `json:"municipalTaxes"`
	SchoolTaxes    float64 `json:"schoolTaxes"`
	Insurance      float64 `json:"insurance"`
}

// Total sums the already rounded categories.
func (t TaxesBreakdown) Total() float64 {
	return mathutil.Round(t.MunicipalTaxes + t.SchoolTaxes + t.Insurance)
}

// Line is the allocation input shared by repairs, new expenses and aid
// variations. Amount is the annual building-level figure of the line.
type Line struct {
	Amount                  float64
	DwellingsConcerned      int
	NonResidentialConcerned int
	DwellingIsConcerned     bool
}

// DwellingShare returns the annual part of line.Amount attributable to the
// dwelling paying currentMonthlyRent.
//
// The amount is split between the concerned dwellings and the concerned
// non-residential units in proportion to their rents, each valued at the
// building's average rent for its kind. The dwelling's part of the dwelling
// pool is its weight within the concerned dwellings' rents.
func DwellingShare(currentMonthlyRent float64, line Line, split RentSplit) float64 {
	if !line.DwellingIsConcerned || line.DwellingsConcerned <= 0 {
		return 0
	}

	concernedDwellingRent := float64(line.DwellingsConcerned) * split.Dwellings.AverageMonthlyRent()
	if concernedDwellingRent <= 0 {
		return 0
	}

	var concernedNonResidentialRent float64
	if line.NonResidentialConcerned > 0 {
		concernedNonResidentialRent = float64(line.NonResidentialConcerned) * split.NonResidential.AverageMonthlyRent()
	}

	dwellingPool := line.Amount * concernedDwellingRent / (concernedDwellingRent + concernedNonResidentialRent)
	return dwellingPool * Weight(currentMonthlyRent, mathutil.Annualize(concernedDwellingRent))
}

// RepairLine is the section 3 monthly adjustment for one major repair. The
// retained expense in line.Amount is amortized over amortizationYears.
func RepairLine(currentMonthlyRent float64, line Line, split RentSplit, amortizationYears int) float64 {
	if amortizationYears <= 0 {
		return 0
	}
	line.Amount = line.Amount / float64(amortizationYears)
	return mathutil.Round(mathutil.Monthly(DwellingShare(currentMonthlyRent, line, split)))
}

// ExpenseLine is the section 4 monthly adjustment for one new expense. The
// retained expense is not amortized.
func ExpenseLine(currentMonthlyRent float64, line Line, split RentSplit) float64 {
	return mathutil.Round(mathutil.Monthly(DwellingShare(currentMonthlyRent, line, split)))
}

// AidVariationLine is the section 4 monthly adjustment for one change in
// financial aid. line.Amount is current minus prior aid; a loss of aid raises
// the rent, so the sign is inverted before allocation.
func AidVariationLine(currentMonthlyRent float64, line Line, split RentSplit) float64 {
	line.Amount = -line.Amount
	return mathutil.Round(mathutil.Monthly(DwellingShare(currentMonthlyRent, line, split)))
}

// SnowRemoval is the section 5 adjustment for mobile-home parks. The fee
// variation passes through with no inflation threshold and no prior guard.
func SnowRemoval(current, prior, weight float64) float64 {
	return mathutil.Round(mathutil.Monthly(current-prior) * weight)
}
