package adjustment

import (
	"testing"

	"github.com/iwvelando/tal-calculator/pkg/mathutil"
)

const testCPIRate = 0.031

func TestWeight(t *testing.T) {
	tests := []struct {
		name     string
		rent     float64
		revenue  float64
		expected float64
	}{
		{"Single dwelling building", 1000, 12000, 1},
		{"Half of the building", 1000, 24000, 0.5},
		{"Zero revenue base", 1000, 0, 0},
		{"Zero rent", 0, 24000, 0},
		{"Not capped above one", 2000, 12000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weight(tt.rent, tt.revenue); !mathutil.WithinTolerance(got, tt.expected, 1e-12) {
				t.Errorf("Weight(%v, %v) = %v, expected %v", tt.rent, tt.revenue, got, tt.expected)
			}
		})
	}
}

func TestAnnualBuildingRevenue(t *testing.T) {
	split := RentSplit{
		Dwellings:      Subtotal{Count: 3, MonthlyRentTotal: 3000},
		NonResidential: Subtotal{Count: 1, MonthlyRentTotal: 1500},
	}

	if got := split.AnnualRents(); got != 54000 {
		t.Errorf("AnnualRents() = %v, expected 54000", got)
	}
	if got := AnnualBuildingRevenue(split, 250); got != 57000 {
		t.Errorf("AnnualBuildingRevenue() = %v, expected 57000", got)
	}
	if got := AnnualBuildingRevenue(RentSplit{}, 0); got != 0 {
		t.Errorf("AnnualBuildingRevenue() of empty building = %v, expected 0", got)
	}
}

func TestBase(t *testing.T) {
	if got := mathutil.Round(Base(1000, testCPIRate)); got != 31 {
		t.Errorf("Base(1000) = %v, expected 31", got)
	}
	if got := Base(0, testCPIRate); got != 0 {
		t.Errorf("Base(0) = %v, expected 0", got)
	}
}

func TestTaxOrInsurance(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		prior    float64
		weight   float64
		expected float64
	}{
		{"Increase above threshold", 11000, 10000, 0.5, 28.75},
		{"Increase within threshold", 10300, 10000, 0.5, 0},
		{"Increase exactly at threshold", 10310, 10000, 0.5, 0},
		{"No change", 10000, 10000, 0.5, 0},
		{"Decrease passed through in full", 9400, 10000, 0.5, -25},
		{"No prior baseline", 5000, 0, 0.5, 0},
		{"Zero weight", 11000, 10000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxOrInsurance(tt.current, tt.prior, tt.weight, testCPIRate)
			if !mathutil.WithinTolerance(got, tt.expected, 1e-9) {
				t.Errorf("TaxOrInsurance(%v, %v) = %v, expected %v", tt.current, tt.prior, got, tt.expected)
			}
		})
	}
}

func TestTaxOrInsuranceThresholdMonotonicity(t *testing.T) {
	prior := 10000.0
	weight := 0.5
	ceiling := prior * (1 + testCPIRate)

	for current := prior; current <= ceiling; current += 10 {
		if got := TaxOrInsurance(current, prior, weight, testCPIRate); got != 0 {
			t.Fatalf("TaxOrInsurance(%v) = %v, expected 0 inside the inflation threshold", current, got)
		}
	}

	previous := 0.0
	for current := ceiling + 100; current <= ceiling+1000; current += 100 {
		got := TaxOrInsurance(current, prior, weight, testCPIRate)
		if got <= previous {
			t.Fatalf("TaxOrInsurance(%v) = %v, expected more than %v", current, got, previous)
		}
		previous = got
	}

	for current := prior - 1000; current < prior; current += 250 {
		expected := mathutil.Round((current - prior) * weight / 12)
		if got := TaxOrInsurance(current, prior, weight, testCPIRate); got != expected {
			t.Errorf("TaxOrInsurance(%v) = %v, expected full decrease %v", current, got, expected)
		}
	}
}

func TestTaxesBreakdownTotal(t *testing.T) {
	breakdown := TaxesBreakdown{MunicipalTaxes: 28.75, SchoolTaxes: -1.2, Insurance: 3.33}
	if got := breakdown.Total(); got != 30.88 {
		t.Errorf("Total() = %v, expected 30.88", got)
	}
}

func singleDwellingSplit() RentSplit {
	return RentSplit{Dwellings: Subtotal{Count: 1, MonthlyRentTotal: 1000}}
}

func TestRepairLine(t *testing.T) {
	split := RentSplit{
		Dwellings:      Subtotal{Count: 4, MonthlyRentTotal: 4000},
		NonResidential: Subtotal{Count: 1, MonthlyRentTotal: 2000},
	}

	tests := []struct {
		name     string
		line     Line
		split    RentSplit
		expected float64
	}{
		{
			name:     "Single dwelling building",
			line:     Line{Amount: 24000, DwellingsConcerned: 1, DwellingIsConcerned: true},
			split:    singleDwellingSplit(),
			expected: 100,
		},
		{
			name:     "Shared among all dwellings",
			line:     Line{Amount: 48000, DwellingsConcerned: 4, DwellingIsConcerned: true},
			split:    split,
			expected: 50,
		},
		{
			name:     "Shared with a commercial unit paying double rent",
			line:     Line{Amount: 72000, DwellingsConcerned: 4, NonResidentialConcerned: 1, DwellingIsConcerned: true},
			split:    split,
			expected: 50,
		},
		{
			name:     "Dwelling not concerned",
			line:     Line{Amount: 48000, DwellingsConcerned: 4, DwellingIsConcerned: false},
			split:    split,
			expected: 0,
		},
		{
			name:     "No concerned dwellings",
			line:     Line{Amount: 48000, DwellingsConcerned: 0, NonResidentialConcerned: 1, DwellingIsConcerned: true},
			split:    split,
			expected: 0,
		},
		{
			name:     "Empty building",
			line:     Line{Amount: 48000, DwellingsConcerned: 4, DwellingIsConcerned: true},
			split:    RentSplit{},
			expected: 0,
		},
		{
			name:     "Negative retained expense is a credit",
			line:     Line{Amount: -24000, DwellingsConcerned: 1, DwellingIsConcerned: true},
			split:    singleDwellingSplit(),
			expected: -100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairLine(1000, tt.line, tt.split, 20)
			if !mathutil.WithinTolerance(got, tt.expected, 1e-9) {
				t.Errorf("RepairLine() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRepairLineAmortizationScaling(t *testing.T) {
	split := RentSplit{
		Dwellings:      Subtotal{Count: 6, MonthlyRentTotal: 6000},
		NonResidential: Subtotal{Count: 2, MonthlyRentTotal: 3000},
	}
	line := Line{Amount: 43200, DwellingsConcerned: 6, NonResidentialConcerned: 2, DwellingIsConcerned: true}

	single := RepairLine(1000, line, split, 20)
	line.Amount *= 2
	double := RepairLine(1000, line, split, 20)

	if single == 0 {
		t.Fatal("expected a non-zero repair adjustment")
	}
	if double != 2*single {
		t.Errorf("doubling the retained expense gave %v, expected %v", double, 2*single)
	}
}

func TestRepairLineInvalidAmortization(t *testing.T) {
	line := Line{Amount: 24000, DwellingsConcerned: 1, DwellingIsConcerned: true}
	if got := RepairLine(1000, line, singleDwellingSplit(), 0); got != 0 {
		t.Errorf("RepairLine() with zero amortization years = %v, expected 0", got)
	}
}

func TestExpenseLineIsNotAmortized(t *testing.T) {
	line := Line{Amount: 1200, DwellingsConcerned: 1, DwellingIsConcerned: true}

	if got := ExpenseLine(1000, line, singleDwellingSplit()); got != 100 {
		t.Errorf("ExpenseLine() = %v, expected 100", got)
	}
	line.DwellingIsConcerned = false
	if got := ExpenseLine(1000, line, singleDwellingSplit()); got != 0 {
		t.Errorf("ExpenseLine() for unconcerned dwelling = %v, expected 0", got)
	}
}

func TestAidVariationLineSignInversion(t *testing.T) {
	split := RentSplit{Dwellings: Subtotal{Count: 2, MonthlyRentTotal: 2000}}

	tests := []struct {
		name      string
		variation float64
		check     func(float64) bool
		expect    string
	}{
		{"Aid lost raises the rent", -2400, func(v float64) bool { return v > 0 }, "positive"},
		{"Aid gained lowers the rent", 2400, func(v float64) bool { return v < 0 }, "negative"},
		{"Unchanged aid", 0, func(v float64) bool { return v == 0 }, "zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := Line{Amount: tt.variation, DwellingsConcerned: 2, DwellingIsConcerned: true}
			got := AidVariationLine(1000, line, split)
			if !tt.check(got) {
				t.Errorf("AidVariationLine(%v) = %v, expected %s", tt.variation, got, tt.expect)
			}
		})
	}

	line := Line{Amount: -2400, DwellingsConcerned: 2, DwellingIsConcerned: true}
	if got := AidVariationLine(1000, line, split); got != 100 {
		t.Errorf("AidVariationLine() = %v, expected 100", got)
	}
}

// Snow removal has neither an inflation threshold nor a prior-year guard.
func TestSnowRemoval(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		prior    float64
		weight   float64
		expected float64
	}{
		{"Increase passes through without threshold", 1236, 1200, 1, 3},
		{"Decrease", 1200, 1800, 0.5, -25},
		{"No prior year still counts", 600, 0, 0.5, 25},
		{"Zero fees", 0, 0, 1, 0},
		{"Zero weight", 1236, 1200, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnowRemoval(tt.current, tt.prior, tt.weight)
			if !mathutil.WithinTolerance(got, tt.expected, 1e-9) {
				t.Errorf("SnowRemoval(%v, %v, %v) = %v, expected %v", tt.current, tt.prior, tt.weight, got, tt.expected)
			}
		})
	}
}
