// Package form defines the facts a landlord enters about a building and the
// dwelling under study, and the lifecycle of the line items attached to them.
package form

// Bucket is one occupancy category of a revenue roll.
type Bucket struct {
	Count            int     `json:"count" yaml:"count"`
	MonthlyRentTotal float64 `json:"monthlyRentTotal" yaml:"monthlyRentTotal"`
}

// Occupancy splits units by who occupies them.
type Occupancy struct {
	Rented          Bucket `json:"rented" yaml:"rented"`
	Vacant          Bucket `json:"vacant" yaml:"vacant"`
	OccupiedByOwner Bucket `json:"occupiedByOwner" yaml:"occupiedByOwner"`
}

// Buckets returns the three buckets in display order.
func (o Occupancy) Buckets() []Bucket {
	return []Bucket{o.Rented, o.Vacant, o.OccupiedByOwner}
}

// TaxPeriod holds a tax bill for the current and prior period.
type TaxPeriod struct {
	CurrentPeriod float64 `json:"currentPeriod" yaml:"currentPeriod"`
	PriorPeriod   float64 `json:"priorPeriod" yaml:"priorPeriod"`
}

// InsurancePremiums holds the premiums in force at each year end.
type InsurancePremiums struct {
	CurrentYearEnd float64 `json:"currentYearEnd" yaml:"currentYearEnd"`
	PriorYearEnd   float64 `json:"priorYearEnd" yaml:"priorYearEnd"`
}

// SnowRemovalFees applies to mobile-home parks only.
type SnowRemovalFees struct {
	CurrentYear float64 `json:"currentYear" yaml:"currentYear"`
	PriorYear   float64 `json:"priorYear" yaml:"priorYear"`
}

// Facts is the full input snapshot for one calculation.
type Facts struct {
	Address               string             `json:"address" yaml:"address"`
	CurrentMonthlyRent    float64            `json:"currentMonthlyRent" yaml:"currentMonthlyRent"`
	IsSeniorResidence     bool               `json:"isSeniorResidence" yaml:"isSeniorResidence"`
	Dwellings             Occupancy          `json:"dwellings" yaml:"dwellings"`
	NonResidential        Occupancy          `json:"nonResidential" yaml:"nonResidential"`
	OtherOperatingRevenue float64            `json:"otherOperatingRevenue" yaml:"otherOperatingRevenue"`
	MunicipalTaxes        TaxPeriod          `json:"municipalTaxes" yaml:"municipalTaxes"`
	SchoolTaxes           TaxPeriod          `json:"schoolTaxes" yaml:"schoolTaxes"`
	Insurance             InsurancePremiums  `json:"insurance" yaml:"insurance"`
	SnowRemoval           SnowRemovalFees    `json:"snowRemoval" yaml:"snowRemoval"`
	Repairs               []RepairLine       `json:"repairs" yaml:"repairs"`
	NewExpenses           []ExpenseLine      `json:"newExpenses" yaml:"newExpenses"`
	AidVariations         []AidVariationLine `json:"aidVariations" yaml:"aidVariations"`
}

// Clone returns a deep copy of the facts so that line slices never alias.
func (f Facts) Clone() Facts {
	out := f
	out.Repairs = append([]RepairLine(nil), f.Repairs...)
	out.NewExpenses = append([]ExpenseLine(nil), f.NewExpenses...)
	out.AidVariations = append([]AidVariationLine(nil), f.AidVariations...)
	return out
}

// Normalize recomputes every derived line field. Snapshots restored from
// storage or decoded from a request must be normalized before use.
func (f Facts) Normalize() Facts {
	out := f.Clone()
	for i := range out.Repairs {
		out.Repairs[i].Recompute()
	}
	for i := range out.NewExpenses {
		out.NewExpenses[i].Recompute()
	}
	for i := range out.AidVariations {
		out.AidVariations[i].Recompute()
	}
	return out
}
