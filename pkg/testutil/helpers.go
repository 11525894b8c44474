// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/pkg/form"
)

// FindLine finds a line adjustment by id in the results slice.
// Returns a pointer to the adjustment if found, nil otherwise.
func FindLine(lines []calculator.LineAdjustment, id string) *calculator.LineAdjustment {
	for i := range lines {
		if lines[i].ID == id {
			return &lines[i]
		}
	}
	return nil
}

// SingleDwellingFacts returns a building made of one rented dwelling paying
// rent, with every other fact zeroed.
func SingleDwellingFacts(rent float64) form.Facts {
	return form.Facts{
		CurrentMonthlyRent: rent,
		Dwellings: form.Occupancy{
			Rented: form.Bucket{Count: 1, MonthlyRentTotal: rent},
		},
	}
}

// MixedBuildingFacts returns a six-dwelling building with one commercial
// unit, the dwelling under study paying 1000 of the 6000 dwelling rents.
func MixedBuildingFacts() form.Facts {
	return form.Facts{
		Address:            "123 rue Principale, Montréal, QC",
		CurrentMonthlyRent: 1000,
		Dwellings: form.Occupancy{
			Rented:          form.Bucket{Count: 4, MonthlyRentTotal: 4000},
			Vacant:          form.Bucket{Count: 1, MonthlyRentTotal: 1000},
			OccupiedByOwner: form.Bucket{Count: 1, MonthlyRentTotal: 1000},
		},
		NonResidential: form.Occupancy{
			Rented: form.Bucket{Count: 1, MonthlyRentTotal: 2000},
		},
	}
}
