// Package calculator computes the recommended rent of a dwelling from a form
// snapshot by running every adjustment section and aggregating the result.
package calculator

import (
	"github.com/iwvelando/tal-calculator/pkg/adapters"
	"github.com/iwvelando/tal-calculator/pkg/adjustment"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// Parameters are the published constants of one reference year.
type Parameters struct {
	ReferenceYear     int     `json:"referenceYear"`
	CPIRate           float64 `json:"cpiRate"`
	AmortizationYears int     `json:"amortizationYears"`
}

// DefaultParameters returns the constants for the default reference year.
func DefaultParameters() Parameters {
	return Parameters{
		ReferenceYear:     constants.DefaultReferenceYear,
		CPIRate:           constants.DefaultCPIRate,
		AmortizationYears: constants.DefaultAmortizationYears,
	}
}

// LineAdjustment is the monthly adjustment computed for one line item.
type LineAdjustment struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Adjustment  float64 `json:"adjustment"`
}

// Values is the fully derived result of one calculation.
type Values struct {
	ReferenceYear              int                       `json:"referenceYear"`
	CPIRate                    float64                   `json:"cpiRate"`
	DwellingsSubtotal          adjustment.Subtotal       `json:"dwellingsSubtotal"`
	NonResidentialSubtotal     adjustment.Subtotal       `json:"nonResidentialSubtotal"`
	TotalAnnualRents           float64                   `json:"totalAnnualRents"`
	TotalAnnualBuildingRevenue float64                   `json:"totalAnnualBuildingRevenue"`
	Weight                     float64                   `json:"weight"`
	BaseAdjustment             float64                   `json:"baseAdjustment"`
	Taxes                      adjustment.TaxesBreakdown `json:"taxes"`
	TaxesAndInsurance          float64                   `json:"taxesAndInsurance"`
	Repairs                    []LineAdjustment          `json:"repairs"`
	MajorRepairs               float64                   `json:"majorRepairs"`
	NewExpenses                []LineAdjustment          `json:"newExpenses"`
	NewExpensesTotal           float64                   `json:"newExpensesTotal"`
	AidVariations              []LineAdjustment          `json:"aidVariations"`
	AidVariationsTotal         float64                   `json:"aidVariationsTotal"`
	NewExpensesAndAid          float64                   `json:"newExpensesAndAid"`
	SnowRemoval                float64                   `json:"snowRemoval"`
	TotalAdjustment            float64                   `json:"totalAdjustment"`
	NewRecommendedRent         float64                   `json:"newRecommendedRent"`
	PercentageVariation        float64                   `json:"percentageVariation"`
}

// CalculateAll runs every section over facts and aggregates the result. It
// never mutates facts and returns the same Values for the same input.
func CalculateAll(logger *zap.Logger, params Parameters, facts form.Facts) Values {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Derived line fields are never trusted from the caller.
	facts = facts.Normalize()

	split := adapters.FactsToRentSplit(facts)
	revenue := adjustment.AnnualBuildingRevenue(split, facts.OtherOperatingRevenue)
	weight := adjustment.Weight(facts.CurrentMonthlyRent, revenue)
	rent := facts.CurrentMonthlyRent

	values := Values{
		ReferenceYear:              params.ReferenceYear,
		CPIRate:                    params.CPIRate,
		DwellingsSubtotal:          split.Dwellings,
		NonResidentialSubtotal:     split.NonResidential,
		TotalAnnualRents:           split.AnnualRents(),
		TotalAnnualBuildingRevenue: revenue,
		Weight:                     weight,
	}

	values.BaseAdjustment = mathutil.Round(adjustment.Base(rent, params.CPIRate))

	values.Taxes = TaxesAndInsurance(facts, weight, params.CPIRate)
	values.TaxesAndInsurance = values.Taxes.Total()

	values.Repairs, values.MajorRepairs = MajorRepairs(facts, split, params.AmortizationYears)
	values.NewExpenses, values.NewExpensesTotal = NewExpenses(facts, split)
	values.AidVariations, values.AidVariationsTotal = AidVariations(facts, split)
	values.NewExpensesAndAid = mathutil.Round(values.NewExpensesTotal + values.AidVariationsTotal)

	values.SnowRemoval = adjustment.SnowRemoval(facts.SnowRemoval.CurrentYear, facts.SnowRemoval.PriorYear, weight)

	values.TotalAdjustment = mathutil.Round(values.BaseAdjustment +
		values.TaxesAndInsurance +
		values.MajorRepairs +
		values.NewExpensesAndAid +
		values.SnowRemoval)
	values.NewRecommendedRent = mathutil.Round(rent + values.TotalAdjustment)
	values.PercentageVariation = mathutil.CalculatePercentage(values.TotalAdjustment, rent)

	logger.Debug("rent adjustment computed",
		zap.String("op", "calculator.CalculateAll"),
		zap.Int("referenceYear", params.ReferenceYear),
		zap.Float64("weight", weight),
		zap.Float64("totalAdjustment", values.TotalAdjustment),
		zap.Float64("newRecommendedRent", values.NewRecommendedRent),
	)

	return values
}

// TaxesAndInsurance computes section 2 for each category.
func TaxesAndInsurance(facts form.Facts, weight, cpiRate float64) adjustment.TaxesBreakdown {
	return adjustment.TaxesBreakdown{
		MunicipalTaxes: adjustment.TaxOrInsurance(facts.MunicipalTaxes.CurrentPeriod, facts.MunicipalTaxes.PriorPeriod, weight, cpiRate),
		SchoolTaxes:    adjustment.TaxOrInsurance(facts.SchoolTaxes.CurrentPeriod, facts.SchoolTaxes.PriorPeriod, weight, cpiRate),
		Insurance:      adjustment.TaxOrInsurance(facts.Insurance.CurrentYearEnd, facts.Insurance.PriorYearEnd, weight, cpiRate),
	}
}

// MajorRepairs computes section 3 per line and in total.
func MajorRepairs(facts form.Facts, split adjustment.RentSplit, amortizationYears int) ([]LineAdjustment, float64) {
	lines := make([]LineAdjustment, 0, len(facts.Repairs))
	var total float64
	for _, repair := range facts.Repairs {
		amount := adjustment.RepairLine(facts.CurrentMonthlyRent, adapters.RepairToLine(repair), split, amortizationYears)
		lines = append(lines, LineAdjustment{ID: repair.ID, Description: repair.Description, Adjustment: amount})
		total += amount
	}
	return lines, mathutil.Round(total)
}

// NewExpenses computes the new-expense half of section 4.
func NewExpenses(facts form.Facts, split adjustment.RentSplit) ([]LineAdjustment, float64) {
	lines := make([]LineAdjustment, 0, len(facts.NewExpenses))
	var total float64
	for _, expense := range facts.NewExpenses {
		amount := adjustment.ExpenseLine(facts.CurrentMonthlyRent, adapters.ExpenseToLine(expense), split)
		lines = append(lines, LineAdjustment{ID: expense.ID, Description: expense.Description, Adjustment: amount})
		total += amount
	}
	return lines, mathutil.Round(total)
}

// AidVariations computes the aid-variation half of section 4.
func AidVariations(facts form.Facts, split adjustment.RentSplit) ([]LineAdjustment, float64) {
	lines := make([]LineAdjustment, 0, len(facts.AidVariations))
	var total float64
	for _, aid := range facts.AidVariations {
		amount := adjustment.AidVariationLine(facts.CurrentMonthlyRent, adapters.AidVariationToLine(aid), split)
		lines = append(lines, LineAdjustment{ID: aid.ID, Description: aid.Description, Adjustment: amount})
		total += amount
	}
	return lines, mathutil.Round(total)
}
