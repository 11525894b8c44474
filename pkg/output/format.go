package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/format"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, lang i18n.Language, facts form.Facts, values calculator.Values) error {
	catalog := i18n.For(lang)
	tag := lang.Tag()
	ew := &errWriter{w: w}

	ew.printf("--- %s ---\n", fmt.Sprintf(catalog.TitleFormat, values.ReferenceYear))
	ew.printf("%s: %s\n\n", catalog.ConcernedDwelling, Address(lang, facts))
	ew.printf("%s\n", catalog.Summary)
	for _, row := range Rows(lang, values) {
		if row.Detail {
			ew.printf("      %-60s %16s\n", truncate(row.Label, 60), format.Currency(tag, row.Amount))
			continue
		}
		ew.printf("  %s. %-60s %16s\n", row.Section, truncate(row.Label, 60), format.Currency(tag, row.Amount))
	}
	ew.printf("  %-63s %16s\n\n", catalog.TotalAdjustments, format.SignedCurrency(tag, values.TotalAdjustment))

	ew.printf("%s\n", catalog.Result)
	ew.printf("  %-40s %16s\n", catalog.CurrentRent, format.Currency(tag, facts.CurrentMonthlyRent))
	ew.printf("  %-40s %16s\n", catalog.NewRent, format.Currency(tag, values.NewRecommendedRent))
	ew.printf("  %-40s %16s\n", catalog.Variation, format.Percent(tag, values.PercentageVariation))
	return ew.err
}

// CsvFormat writes the summary rows and the result in comma-separated value
// format with plain two-decimal amounts.
func CsvFormat(w io.Writer, lang i18n.Language, facts form.Facts, values calculator.Values) error {
	catalog := i18n.For(lang)
	cw := csv.NewWriter(w)

	records := [][]string{{"section", "label", "amount"}}
	for _, row := range Rows(lang, values) {
		records = append(records, []string{row.Section, row.Label, amount(row.Amount)})
	}
	records = append(records,
		[]string{"total", catalog.TotalAdjustments, amount(values.TotalAdjustment)},
		[]string{"result", catalog.CurrentRent, amount(facts.CurrentMonthlyRent)},
		[]string{"result", catalog.NewRent, amount(values.NewRecommendedRent)},
		[]string{"result", catalog.Variation, amount(values.PercentageVariation)},
	)

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Document is the machine-readable form of one calculation.
type Document struct {
	Parameters calculator.Parameters `json:"parameters"`
	Facts      form.Facts            `json:"facts"`
	Values     calculator.Values     `json:"values"`
}

// JSONFormat writes the parameters, facts and derived values as indented JSON.
func JSONFormat(w io.Writer, params calculator.Parameters, facts form.Facts, values calculator.Values) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Document{Parameters: params, Facts: facts, Values: values}); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(layout string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, layout, args...)
}
