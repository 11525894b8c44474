// Package export renders a finished calculation as a shareable document.
// Documents read the calculated values only and never recompute them.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/format"
	"github.com/iwvelando/tal-calculator/pkg/output"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the summary document of a calculation.
func Markdown(facts form.Facts, values calculator.Values, lang i18n.Language, generatedAt time.Time) string {
	catalog := i18n.For(lang)
	tag := lang.Tag()
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", fmt.Sprintf(catalog.TitleFormat, values.ReferenceYear))
	fmt.Fprintf(&b, "_%s_\n\n", catalog.Subtitle)
	fmt.Fprintf(&b, "**%s:** %s\n\n", catalog.ConcernedDwelling, escape(output.Address(lang, facts)))
	if facts.IsSeniorResidence {
		fmt.Fprintf(&b, "%s\n\n", catalog.SeniorResidence)
	}

	fmt.Fprintf(&b, "## %s\n\n", catalog.Summary)
	fmt.Fprintf(&b, "| %s | %s | %s |\n", catalog.Section, catalog.Description, catalog.MonthlyAdjustment)
	b.WriteString("| :-- | :-- | --: |\n")
	for _, row := range output.Rows(lang, values) {
		amount := format.Currency(tag, row.Amount)
		if row.Detail {
			fmt.Fprintf(&b, "|  | _%s_ | _%s_ |\n", escape(row.Label), amount)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row.Section, escape(row.Label), amount)
	}
	fmt.Fprintf(&b, "|  | **%s** | **%s** |\n\n", catalog.TotalAdjustments, format.SignedCurrency(tag, values.TotalAdjustment))

	fmt.Fprintf(&b, "## %s\n\n", catalog.Result)
	fmt.Fprintf(&b, "- %s: %s\n", catalog.CurrentRent, format.Currency(tag, facts.CurrentMonthlyRent))
	fmt.Fprintf(&b, "- %s: **%s**\n", catalog.NewRent, format.Currency(tag, values.NewRecommendedRent))
	fmt.Fprintf(&b, "- %s: %s\n\n", catalog.Variation, format.Percent(tag, values.PercentageVariation))

	fmt.Fprintf(&b, "## %s\n\n%s\n\n", catalog.LegalNoticeTitle, catalog.LegalNotice)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "_%s_\n", fmt.Sprintf(catalog.GeneratedOnFormat, generatedAt.Format("2006-01-02 15:04"), values.ReferenceYear))

	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the Markdown document as a standalone HTML page.
func HTML(facts form.Facts, values calculator.Values, lang i18n.Language, generatedAt time.Time) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(facts, values, lang, generatedAt)), &body); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	title := fmt.Sprintf(i18n.For(lang).TitleFormat, values.ReferenceYear)
	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&page, "<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", lang)
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:sans-serif;max-width:50em;margin:2em auto}table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.3em}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "<", "&lt;", ">", "&gt;")

// escape keeps user-entered text from breaking the table or injecting markup.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}
