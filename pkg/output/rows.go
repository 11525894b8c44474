// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"fmt"

	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/pkg/format"
	"github.com/iwvelando/tal-calculator/pkg/form"
)

// Row is one line of the adjustment summary. Detail rows break down the
// section row that precedes them.
type Row struct {
	Section string  `json:"section"`
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Detail  bool    `json:"detail,omitempty"`
}

// Rows returns the summary of adjustments in display order, sections 1 to 5.
func Rows(lang i18n.Language, values calculator.Values) []Row {
	catalog := i18n.For(lang)
	tag := lang.Tag()

	rows := []Row{
		{Section: "1", Label: fmt.Sprintf(catalog.BaseAdjustmentFormat, format.Rate(tag, values.CPIRate)), Amount: values.BaseAdjustment},
		{Section: "2", Label: catalog.TaxesAndInsurance, Amount: values.TaxesAndInsurance},
		{Section: "2", Label: catalog.MunicipalTaxes, Amount: values.Taxes.MunicipalTaxes, Detail: true},
		{Section: "2", Label: catalog.SchoolTaxes, Amount: values.Taxes.SchoolTaxes, Detail: true},
		{Section: "2", Label: catalog.Insurance, Amount: values.Taxes.Insurance, Detail: true},
		{Section: "3", Label: catalog.MajorRepairs, Amount: values.MajorRepairs},
	}
	rows = appendLines(rows, "3", values.Repairs, catalog.NotSpecified)
	rows = append(rows, Row{Section: "4", Label: catalog.NewExpenses, Amount: values.NewExpensesTotal})
	rows = appendLines(rows, "4", values.NewExpenses, catalog.NotSpecified)
	rows = append(rows, Row{Section: "4", Label: catalog.AidVariations, Amount: values.AidVariationsTotal})
	rows = appendLines(rows, "4", values.AidVariations, catalog.NotSpecified)
	rows = append(rows, Row{Section: "5", Label: catalog.SnowRemoval, Amount: values.SnowRemoval})
	return rows
}

func appendLines(rows []Row, section string, lines []calculator.LineAdjustment, fallback string) []Row {
	for _, line := range lines {
		label := line.Description
		if label == "" {
			label = fallback
		}
		rows = append(rows, Row{Section: section, Label: label, Amount: line.Adjustment, Detail: true})
	}
	return rows
}

// Address returns the address of the building, or the localized
// placeholder when none was entered.
func Address(lang i18n.Language, facts form.Facts) string {
	if facts.Address == "" {
		return i18n.For(lang).NotSpecified
	}
	return facts.Address
}
