// Package adapters converts form line items into allocation inputs.
package adapters

import (
	"github.com/iwvelando/tal-calculator/pkg/adjustment"
	"github.com/iwvelando/tal-calculator/pkg/form"
)

func fromAllocation(amount float64, a form.Allocation) adjustment.Line {
	return adjustment.Line{
		Amount:                  amount,
		DwellingsConcerned:      a.DwellingsConcernedCount,
		NonResidentialConcerned: a.NonResidentialUnitsConcernedCount,
		DwellingIsConcerned:     a.DwellingIsConcerned,
	}
}

// RepairToLine allocates the retained expense of a repair.
func RepairToLine(line form.RepairLine) adjustment.Line {
	return fromAllocation(line.RetainedExpense, line.Allocation)
}

// ExpenseToLine allocates the retained expense of a new expense.
func ExpenseToLine(line form.ExpenseLine) adjustment.Line {
	return fromAllocation(line.RetainedExpense, line.Allocation)
}

// AidVariationToLine allocates the aid variation (current minus prior).
func AidVariationToLine(line form.AidVariationLine) adjustment.Line {
	return fromAllocation(line.Variation, line.Allocation)
}

// OccupancyToSubtotal sums the three occupancy buckets.
func OccupancyToSubtotal(occupancy form.Occupancy) adjustment.Subtotal {
	var subtotal adjustment.Subtotal
	for _, bucket := range occupancy.Buckets() {
		subtotal = subtotal.Add(adjustment.Subtotal{
			Count:            bucket.Count,
			MonthlyRentTotal: bucket.MonthlyRentTotal,
		})
	}
	return subtotal
}

// FactsToRentSplit builds the whole-building rent split of a snapshot.
func FactsToRentSplit(facts form.Facts) adjustment.RentSplit {
	return adjustment.RentSplit{
		Dwellings:      OccupancyToSubtotal(facts.Dwellings),
		NonResidential: OccupancyToSubtotal(facts.NonResidential),
	}
}
