package validation

import (
	"fmt"

	"github.com/iwvelando/tal-calculator/pkg/adapters"
	"github.com/iwvelando/tal-calculator/pkg/adjustment"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/mathutil"
)

// ValidateFacts returns warnings about facts the calculator accepts but that
// are likely data entry mistakes. It never rejects a snapshot.
func ValidateFacts(facts form.Facts) []string {
	var warnings []string

	if facts.CurrentMonthlyRent <= 0 {
		warnings = append(warnings, "current monthly rent is not positive; the percentage variation will be 0")
	}

	warnings = append(warnings, checkOccupancy("dwellings", facts.Dwellings)...)
	warnings = append(warnings, checkOccupancy("non-residential units", facts.NonResidential)...)

	amounts := []struct {
		label string
		value float64
	}{
		{"other operating revenue", facts.OtherOperatingRevenue},
		{"current municipal taxes", facts.MunicipalTaxes.CurrentPeriod},
		{"prior municipal taxes", facts.MunicipalTaxes.PriorPeriod},
		{"current school taxes", facts.SchoolTaxes.CurrentPeriod},
		{"prior school taxes", facts.SchoolTaxes.PriorPeriod},
		{"current insurance premiums", facts.Insurance.CurrentYearEnd},
		{"prior insurance premiums", facts.Insurance.PriorYearEnd},
		{"current snow removal fees", facts.SnowRemoval.CurrentYear},
		{"prior snow removal fees", facts.SnowRemoval.PriorYear},
	}
	for _, amount := range amounts {
		if amount.value < 0 {
			warnings = append(warnings, fmt.Sprintf("%s is negative (%.2f)", amount.label, amount.value))
		}
	}

	split := adapters.FactsToRentSplit(facts)
	revenue := adjustment.AnnualBuildingRevenue(split, facts.OtherOperatingRevenue)
	if facts.CurrentMonthlyRent > 0 && mathutil.IsZero(revenue) {
		warnings = append(warnings, "building revenue is zero; weighted sections will not adjust the rent")
	}
	if weight := adjustment.Weight(facts.CurrentMonthlyRent, revenue); weight > 1 {
		warnings = append(warnings, fmt.Sprintf("dwelling weight is %.4f; the building revenue should include the dwelling's own rent", weight))
	}

	if len(facts.Repairs) > constants.MaxRepairLines {
		warnings = append(warnings, fmt.Sprintf("%d major repair lines exceed the maximum of %d", len(facts.Repairs), constants.MaxRepairLines))
	}
	for i, line := range facts.Repairs {
		label := fmt.Sprintf("major repair %d", i+1)
		warnings = append(warnings, checkAllocation(label, line.Allocation, split)...)
		if line.RetainedExpense < 0 {
			warnings = append(warnings, fmt.Sprintf("%s has a negative retained expense (%.2f) and lowers the rent", label, line.RetainedExpense))
		}
	}
	for i, line := range facts.NewExpenses {
		warnings = append(warnings, checkAllocation(fmt.Sprintf("new expense %d", i+1), line.Allocation, split)...)
	}
	for i, line := range facts.AidVariations {
		warnings = append(warnings, checkAllocation(fmt.Sprintf("aid variation %d", i+1), line.Allocation, split)...)
	}

	return warnings
}

func checkOccupancy(label string, occupancy form.Occupancy) []string {
	var warnings []string
	for _, bucket := range occupancy.Buckets() {
		if bucket.Count < 0 || bucket.MonthlyRentTotal < 0 {
			warnings = append(warnings, fmt.Sprintf("%s contain a negative count or rent (%d, %.2f)", label, bucket.Count, bucket.MonthlyRentTotal))
		}
	}
	return warnings
}

func checkAllocation(label string, allocation form.Allocation, split adjustment.RentSplit) []string {
	var warnings []string
	if allocation.DwellingIsConcerned && allocation.DwellingsConcernedCount <= 0 {
		warnings = append(warnings, fmt.Sprintf("%s concerns the dwelling but no dwellings are counted; it is ignored", label))
	}
	if allocation.DwellingsConcernedCount > split.Dwellings.Count {
		warnings = append(warnings, fmt.Sprintf("%s concerns %d dwellings but the building has %d",
			label, allocation.DwellingsConcernedCount, split.Dwellings.Count))
	}
	if allocation.NonResidentialUnitsConcernedCount > split.NonResidential.Count {
		warnings = append(warnings, fmt.Sprintf("%s concerns %d non-residential units but the building has %d",
			label, allocation.NonResidentialUnitsConcernedCount, split.NonResidential.Count))
	}
	return warnings
}
