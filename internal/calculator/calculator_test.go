package calculator_test

import (
	"reflect"
	"testing"

	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/mathutil"
	"github.com/iwvelando/tal-calculator/pkg/testutil"
	"go.uber.org/zap"
)

func testParameters() calculator.Parameters {
	return calculator.Parameters{ReferenceYear: 2026, CPIRate: 0.031, AmortizationYears: 20}
}

func assertClose(t *testing.T, field string, got, expected float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, expected, 1e-9) {
		t.Errorf("%s = %v, expected %v", field, got, expected)
	}
}

func TestCalculateAllZeroInput(t *testing.T) {
	values := calculator.CalculateAll(zap.NewNop(), testParameters(), form.Facts{})

	assertClose(t, "BaseAdjustment", values.BaseAdjustment, 0)
	assertClose(t, "TaxesAndInsurance", values.TaxesAndInsurance, 0)
	assertClose(t, "MajorRepairs", values.MajorRepairs, 0)
	assertClose(t, "NewExpensesAndAid", values.NewExpensesAndAid, 0)
	assertClose(t, "SnowRemoval", values.SnowRemoval, 0)
	assertClose(t, "TotalAdjustment", values.TotalAdjustment, 0)
	assertClose(t, "NewRecommendedRent", values.NewRecommendedRent, 0)
	assertClose(t, "PercentageVariation", values.PercentageVariation, 0)
	assertClose(t, "TotalAnnualBuildingRevenue", values.TotalAnnualBuildingRevenue, 0)
}

func TestCalculateAllSingleDwelling(t *testing.T) {
	values := calculator.CalculateAll(zap.NewNop(), testParameters(), testutil.SingleDwellingFacts(1000))

	assertClose(t, "TotalAnnualBuildingRevenue", values.TotalAnnualBuildingRevenue, 12000)
	assertClose(t, "Weight", values.Weight, 1)
	assertClose(t, "BaseAdjustment", values.BaseAdjustment, 31)
	assertClose(t, "TaxesAndInsurance", values.TaxesAndInsurance, 0)
	assertClose(t, "MajorRepairs", values.MajorRepairs, 0)
	assertClose(t, "NewExpensesAndAid", values.NewExpensesAndAid, 0)
	assertClose(t, "SnowRemoval", values.SnowRemoval, 0)
	assertClose(t, "TotalAdjustment", values.TotalAdjustment, 31)
	assertClose(t, "NewRecommendedRent", values.NewRecommendedRent, 1031)
	assertClose(t, "PercentageVariation", values.PercentageVariation, 3.1)
	assertClose(t, "CPIRate", values.CPIRate, 0.031)
}

func mixedBuildingWithLines() form.Facts {
	facts := testutil.MixedBuildingFacts()
	facts.MunicipalTaxes = form.TaxPeriod{CurrentPeriod: 22000, PriorPeriod: 20000}
	facts.SchoolTaxes = form.TaxPeriod{CurrentPeriod: 2880, PriorPeriod: 3000}
	facts.Insurance = form.InsurancePremiums{CurrentYearEnd: 6100, PriorYearEnd: 6000}
	facts.Repairs = []form.RepairLine{
		{
			ID:                   "roof",
			Description:          "Roof",
			GrossExpense:         100000,
			FinancialAidReceived: 3000,
			ThirdPartyIndemnity:  1000,
			Allocation: form.Allocation{
				DwellingsConcernedCount:           6,
				NonResidentialUnitsConcernedCount: 1,
				DwellingIsConcerned:               true,
			},
		},
		{
			ID:           "storefront",
			Description:  "Storefront windows",
			GrossExpense: 40000,
			Allocation: form.Allocation{
				NonResidentialUnitsConcernedCount: 1,
				DwellingIsConcerned:               false,
			},
		},
	}
	facts.NewExpenses = []form.ExpenseLine{
		{
			ID:                   "concierge",
			GrossExpense:         1500,
			FinancialAidReceived: 300,
			Allocation:           form.Allocation{DwellingsConcernedCount: 6, DwellingIsConcerned: true},
		},
	}
	facts.AidVariations = []form.AidVariationLine{
		{
			ID:              "subsidy",
			AmountPriorYear: 1440,
			Allocation:      form.Allocation{DwellingsConcernedCount: 6, DwellingIsConcerned: true},
		},
	}
	return facts
}

func TestCalculateAllMixedBuilding(t *testing.T) {
	values := calculator.CalculateAll(zap.NewNop(), testParameters(), mixedBuildingWithLines())

	assertClose(t, "DwellingsSubtotal.MonthlyRentTotal", values.DwellingsSubtotal.MonthlyRentTotal, 6000)
	if values.DwellingsSubtotal.Count != 6 || values.NonResidentialSubtotal.Count != 1 {
		t.Errorf("unexpected subtotals: %+v %+v", values.DwellingsSubtotal, values.NonResidentialSubtotal)
	}
	assertClose(t, "TotalAnnualRents", values.TotalAnnualRents, 96000)
	assertClose(t, "Weight", values.Weight, 0.125)

	assertClose(t, "Taxes.MunicipalTaxes", values.Taxes.MunicipalTaxes, 14.38)
	assertClose(t, "Taxes.SchoolTaxes", values.Taxes.SchoolTaxes, -1.25)
	assertClose(t, "Taxes.Insurance", values.Taxes.Insurance, 0)
	assertClose(t, "TaxesAndInsurance", values.TaxesAndInsurance, 13.13)

	roof := testutil.FindLine(values.Repairs, "roof")
	if roof == nil {
		t.Fatal("expected an adjustment for the roof repair")
	}
	assertClose(t, "roof adjustment", roof.Adjustment, 50)
	storefront := testutil.FindLine(values.Repairs, "storefront")
	if storefront == nil {
		t.Fatal("expected an adjustment entry for the storefront repair")
	}
	assertClose(t, "storefront adjustment", storefront.Adjustment, 0)
	assertClose(t, "MajorRepairs", values.MajorRepairs, 50)

	assertClose(t, "NewExpensesTotal", values.NewExpensesTotal, 16.67)
	assertClose(t, "AidVariationsTotal", values.AidVariationsTotal, 20)
	assertClose(t, "NewExpensesAndAid", values.NewExpensesAndAid, 36.67)

	assertClose(t, "TotalAdjustment", values.TotalAdjustment, 130.8)
	assertClose(t, "NewRecommendedRent", values.NewRecommendedRent, 1130.8)
	assertClose(t, "PercentageVariation", values.PercentageVariation, 13.08)
}

func TestCalculateAllRevenueBaseGuard(t *testing.T) {
	facts := mixedBuildingWithLines()
	facts.Dwellings = form.Occupancy{}
	facts.NonResidential = form.Occupancy{}
	facts.OtherOperatingRevenue = 0
	facts.SnowRemoval = form.SnowRemovalFees{CurrentYear: 2400, PriorYear: 1200}

	values := calculator.CalculateAll(zap.NewNop(), testParameters(), facts)

	assertClose(t, "Weight", values.Weight, 0)
	assertClose(t, "BaseAdjustment", values.BaseAdjustment, 31)
	assertClose(t, "TaxesAndInsurance", values.TaxesAndInsurance, 0)
	assertClose(t, "MajorRepairs", values.MajorRepairs, 0)
	assertClose(t, "NewExpensesAndAid", values.NewExpensesAndAid, 0)
	assertClose(t, "SnowRemoval", values.SnowRemoval, 0)
	assertClose(t, "TotalAdjustment", values.TotalAdjustment, 31)
}

func TestCalculateAllSnowRemovalWithoutThreshold(t *testing.T) {
	facts := testutil.SingleDwellingFacts(1000)
	facts.SnowRemoval = form.SnowRemovalFees{CurrentYear: 1236, PriorYear: 1200}

	values := calculator.CalculateAll(zap.NewNop(), testParameters(), facts)

	// A 3% increase stays under the 3.1% CPI rate but still passes through.
	assertClose(t, "SnowRemoval", values.SnowRemoval, 3)
	assertClose(t, "TotalAdjustment", values.TotalAdjustment, 34)
}

func TestCalculateAllOtherRevenueDilutesWeight(t *testing.T) {
	facts := testutil.SingleDwellingFacts(1000)
	facts.OtherOperatingRevenue = 1000
	facts.MunicipalTaxes = form.TaxPeriod{CurrentPeriod: 11000, PriorPeriod: 10000}

	values := calculator.CalculateAll(zap.NewNop(), testParameters(), facts)

	assertClose(t, "TotalAnnualRents", values.TotalAnnualRents, 12000)
	assertClose(t, "TotalAnnualBuildingRevenue", values.TotalAnnualBuildingRevenue, 24000)
	assertClose(t, "Weight", values.Weight, 0.5)
	assertClose(t, "Taxes.MunicipalTaxes", values.Taxes.MunicipalTaxes, 28.75)
}

func TestCalculateAllIdempotentAndNonMutating(t *testing.T) {
	facts := mixedBuildingWithLines()
	facts.Repairs[0].RetainedExpense = 1

	first := calculator.CalculateAll(zap.NewNop(), testParameters(), facts)
	second := calculator.CalculateAll(nil, testParameters(), facts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if facts.Repairs[0].RetainedExpense != 1 {
		t.Errorf("input facts were mutated: retained expense = %v", facts.Repairs[0].RetainedExpense)
	}
}

func TestCalculateAllUsesConfiguredConstants(t *testing.T) {
	facts := testutil.SingleDwellingFacts(1000)
	facts.Repairs = []form.RepairLine{{
		ID:           "roof",
		GrossExpense: 24000,
		Allocation:   form.Allocation{DwellingsConcernedCount: 1, DwellingIsConcerned: true},
	}}

	params := calculator.Parameters{ReferenceYear: 2027, CPIRate: 0.02, AmortizationYears: 10}
	values := calculator.CalculateAll(zap.NewNop(), params, facts)

	assertClose(t, "BaseAdjustment", values.BaseAdjustment, 20)
	assertClose(t, "MajorRepairs", values.MajorRepairs, 200)
}

func TestDefaultParameters(t *testing.T) {
	params := calculator.DefaultParameters()
	if params.CPIRate != 0.031 || params.AmortizationYears != 20 || params.ReferenceYear != 2026 {
		t.Errorf("unexpected default parameters: %+v", params)
	}
}
