package form

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/tal-calculator/pkg/constants"
)

var (
	// ErrRepairLimit is returned when adding a repair line beyond MaxRepairLines.
	ErrRepairLimit = fmt.Errorf("at most %d major repair lines are allowed", constants.MaxRepairLines)

	// ErrLineNotFound is returned when no line carries the requested id.
	ErrLineNotFound = errors.New("line not found")
)

// Allocation describes which units of the building a line applies to.
type Allocation struct {
	DwellingsConcernedCount           int  `json:"dwellingsConcernedCount" yaml:"dwellingsConcernedCount"`
	NonResidentialUnitsConcernedCount int  `json:"nonResidentialUnitsConcernedCount" yaml:"nonResidentialUnitsConcernedCount"`
	DwellingIsConcerned               bool `json:"dwellingIsConcerned" yaml:"dwellingIsConcerned"`
}

// RepairLine is a major repair or improvement amortized over several years.
type RepairLine struct {
	ID                   string  `json:"id" yaml:"id"`
	Description          string  `json:"description" yaml:"description"`
	GrossExpense         float64 `json:"grossExpense" yaml:"grossExpense"`
	FinancialAidReceived float64 `json:"financialAidReceived" yaml:"financialAidReceived"`
	ThirdPartyIndemnity  float64 `json:"thirdPartyIndemnity" yaml:"thirdPartyIndemnity"`
	RetainedExpense      float64 `json:"retainedExpense" yaml:"retainedExpense"`
	// The loan fields are recorded for the tribunal form only; they do not
	// enter the adjustment arithmetic.
	ReducedInterestLoanAmount float64 `json:"reducedInterestLoanAmount" yaml:"reducedInterestLoanAmount"`
	AnnualLoanPayment         float64 `json:"annualLoanPayment" yaml:"annualLoanPayment"`
	Allocation                `yaml:",inline"`
}

// Recompute derives RetainedExpense. It may go negative.
func (l *RepairLine) Recompute() {
	l.RetainedExpense = l.GrossExpense - l.FinancialAidReceived - l.ThirdPartyIndemnity
}

// ExpenseLine is a new operating expense, passed through without amortization.
type ExpenseLine struct {
	ID                   string  `json:"id" yaml:"id"`
	Description          string  `json:"description" yaml:"description"`
	GrossExpense         float64 `json:"grossExpense" yaml:"grossExpense"`
	FinancialAidReceived float64 `json:"financialAidReceived" yaml:"financialAidReceived"`
	RetainedExpense      float64 `json:"retainedExpense" yaml:"retainedExpense"`
	Allocation           `yaml:",inline"`
}

// Recompute derives RetainedExpense.
func (l *ExpenseLine) Recompute() {
	l.RetainedExpense = l.GrossExpense - l.FinancialAidReceived
}

// AidVariationLine records a change in financial aid between two years.
type AidVariationLine struct {
	ID                string  `json:"id" yaml:"id"`
	Description       string  `json:"description" yaml:"description"`
	AmountCurrentYear float64 `json:"amountCurrentYear" yaml:"amountCurrentYear"`
	AmountPriorYear   float64 `json:"amountPriorYear" yaml:"amountPriorYear"`
	Variation         float64 `json:"variation" yaml:"variation"`
	Allocation        `yaml:",inline"`
}

// Recompute derives Variation.
func (l *AidVariationLine) Recompute() {
	l.Variation = l.AmountCurrentYear - l.AmountPriorYear
}

// AllocationPatch updates the allocation fields present in the patch.
type AllocationPatch struct {
	DwellingsConcernedCount           *int  `json:"dwellingsConcernedCount,omitempty"`
	NonResidentialUnitsConcernedCount *int  `json:"nonResidentialUnitsConcernedCount,omitempty"`
	DwellingIsConcerned               *bool `json:"dwellingIsConcerned,omitempty"`
}

func (p AllocationPatch) apply(a *Allocation) {
	if p.DwellingsConcernedCount != nil {
		a.DwellingsConcernedCount = *p.DwellingsConcernedCount
	}
	if p.NonResidentialUnitsConcernedCount != nil {
		a.NonResidentialUnitsConcernedCount = *p.NonResidentialUnitsConcernedCount
	}
	if p.DwellingIsConcerned != nil {
		a.DwellingIsConcerned = *p.DwellingIsConcerned
	}
}

// RepairPatch is a partial update of a RepairLine. Derived fields are not patchable.
type RepairPatch struct {
	Description               *string  `json:"description,omitempty"`
	GrossExpense              *float64 `json:"grossExpense,omitempty"`
	FinancialAidReceived      *float64 `json:"financialAidReceived,omitempty"`
	ThirdPartyIndemnity       *float64 `json:"thirdPartyIndemnity,omitempty"`
	ReducedInterestLoanAmount *float64 `json:"reducedInterestLoanAmount,omitempty"`
	AnnualLoanPayment         *float64 `json:"annualLoanPayment,omitempty"`
	AllocationPatch
}

// ExpensePatch is a partial update of an ExpenseLine.
type ExpensePatch struct {
	Description          *string  `json:"description,omitempty"`
	GrossExpense         *float64 `json:"grossExpense,omitempty"`
	FinancialAidReceived *float64 `json:"financialAidReceived,omitempty"`
	AllocationPatch
}

// AidVariationPatch is a partial update of an AidVariationLine.
type AidVariationPatch struct {
	Description       *string  `json:"description,omitempty"`
	AmountCurrentYear *float64 `json:"amountCurrentYear,omitempty"`
	AmountPriorYear   *float64 `json:"amountPriorYear,omitempty"`
	AllocationPatch
}

func newAllocation() Allocation {
	return Allocation{
		DwellingsConcernedCount: constants.DefaultDwellingsConcerned,
		DwellingIsConcerned:     true,
	}
}

func newID() string {
	return uuid.New().String()
}

// AddRepair appends an empty repair line and returns the new facts and line id.
func (f Facts) AddRepair() (Facts, string, error) {
	if len(f.Repairs) >= constants.MaxRepairLines {
		return f, "", ErrRepairLimit
	}
	out := f.Clone()
	line := RepairLine{ID: newID(), Allocation: newAllocation()}
	out.Repairs = append(out.Repairs, line)
	return out, line.ID, nil
}

// UpdateRepair applies a patch to the repair line with the given id.
func (f Facts) UpdateRepair(id string, patch RepairPatch) (Facts, error) {
	out := f.Clone()
	for i := range out.Repairs {
		if out.Repairs[i].ID != id {
			continue
		}
		line := &out.Repairs[i]
		setString(&line.Description, patch.Description)
		setFloat(&line.GrossExpense, patch.GrossExpense)
		setFloat(&line.FinancialAidReceived, patch.FinancialAidReceived)
		setFloat(&line.ThirdPartyIndemnity, patch.ThirdPartyIndemnity)
		setFloat(&line.ReducedInterestLoanAmount, patch.ReducedInterestLoanAmount)
		setFloat(&line.AnnualLoanPayment, patch.AnnualLoanPayment)
		patch.apply(&line.Allocation)
		line.Recompute()
		return out, nil
	}
	return f, fmt.Errorf("repair %q: %w", id, ErrLineNotFound)
}

// RemoveRepair drops the repair line with the given id.
func (f Facts) RemoveRepair(id string) (Facts, error) {
	for i := range f.Repairs {
		if f.Repairs[i].ID == id {
			out := f.Clone()
			out.Repairs = append(out.Repairs[:i], out.Repairs[i+1:]...)
			return out, nil
		}
	}
	return f, fmt.Errorf("repair %q: %w", id, ErrLineNotFound)
}

// AddNewExpense appends an empty new-expense line.
func (f Facts) AddNewExpense() (Facts, string) {
	out := f.Clone()
	line := ExpenseLine{ID: newID(), Allocation: newAllocation()}
	out.NewExpenses = append(out.NewExpenses, line)
	return out, line.ID
}

// UpdateNewExpense applies a patch to the new-expense line with the given id.
func (f Facts) UpdateNewExpense(id string, patch ExpensePatch) (Facts, error) {
	out := f.Clone()
	for i := range out.NewExpenses {
		if out.NewExpenses[i].ID != id {
			continue
		}
		line := &out.NewExpenses[i]
		setString(&line.Description, patch.Description)
		setFloat(&line.GrossExpense, patch.GrossExpense)
		setFloat(&line.FinancialAidReceived, patch.FinancialAidReceived)
		patch.apply(&line.Allocation)
		line.Recompute()
		return out, nil
	}
	return f, fmt.Errorf("new expense %q: %w", id, ErrLineNotFound)
}

// RemoveNewExpense drops the new-expense line with the given id.
func (f Facts) RemoveNewExpense(id string) (Facts, error) {
	for i := range f.NewExpenses {
		if f.NewExpenses[i].ID == id {
			out := f.Clone()
			out.NewExpenses = append(out.NewExpenses[:i], out.NewExpenses[i+1:]...)
			return out, nil
		}
	}
	return f, fmt.Errorf("new expense %q: %w", id, ErrLineNotFound)
}

// AddAidVariation appends an empty aid-variation line.
func (f Facts) AddAidVariation() (Facts, string) {
	out := f.Clone()
	line := AidVariationLine{ID: newID(), Allocation: newAllocation()}
	out.AidVariations = append(out.AidVariations, line)
	return out, line.ID
}

// UpdateAidVariation applies a patch to the aid-variation line with the given id.
func (f Facts) UpdateAidVariation(id string, patch AidVariationPatch) (Facts, error) {
	out := f.Clone()
	for i := range out.AidVariations {
		if out.AidVariations[i].ID != id {
			continue
		}
		line := &out.AidVariations[i]
		setString(&line.Description, patch.Description)
		setFloat(&line.AmountCurrentYear, patch.AmountCurrentYear)
		setFloat(&line.AmountPriorYear, patch.AmountPriorYear)
		patch.apply(&line.Allocation)
		line.Recompute()
		return out, nil
	}
	return f, fmt.Errorf("aid variation %q: %w", id, ErrLineNotFound)
}

// RemoveAidVariation drops the aid-variation line with the given id.
func (f Facts) RemoveAidVariation(id string) (Facts, error) {
	for i := range f.AidVariations {
		if f.AidVariations[i].ID == id {
			out := f.Clone()
			out.AidVariations = append(out.AidVariations[:i], out.AidVariations[i+1:]...)
			return out, nil
		}
	}
	return f, fmt.Errorf("aid variation %q: %w", id, ErrLineNotFound)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
