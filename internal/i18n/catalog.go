// Package i18n holds the French and English labels used by the exported
// documents and the CLI output.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported display language.
type Language string

const (
	// French is the default language.
	French Language = "fr"
	// English is the alternate language.
	English Language = "en"
)

// Parse accepts fr, fr-CA, en and en-CA in any case. An empty value is French.
func Parse(value string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "fr", "fr-ca", "fr_ca":
		return French, nil
	case "en", "en-ca", "en_ca":
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q, expected fr or en", value)
	}
}

// Tag returns the locale used to format numbers.
func (l Language) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.CanadianFrench
}

// Catalog is the set of labels for one language. Entries ending in Format
// are fmt templates.
type Catalog struct {
	TitleFormat          string // reference year
	Subtitle             string
	ConcernedDwelling    string
	NotSpecified         string
	Summary              string
	Section              string
	Description          string
	MonthlyAdjustment    string
	BaseAdjustmentFormat string // CPI rate as a percentage
	TaxesAndInsurance    string
	MunicipalTaxes       string
	SchoolTaxes          string
	Insurance            string
	MajorRepairs         string
	NewExpenses          string
	AidVariations        string
	SnowRemoval          string
	TotalAdjustments     string
	Result               string
	CurrentRent          string
	NewRent              string
	Variation            string
	SeniorResidence      string
	LegalNoticeTitle     string
	LegalNotice          string
	GeneratedOnFormat    string // date, reference year
}

var catalogs = map[Language]Catalog{
	French: {
		TitleFormat:          "Outil de calcul %d",
		Subtitle:             "Tribunal administratif du logement",
		ConcernedDwelling:    "Logement concerné",
		NotSpecified:         "Non spécifié",
		Summary:              "Récapitulatif des ajustements",
		Section:              "Section",
		Description:          "Description",
		MonthlyAdjustment:    "Ajustement mensuel",
		BaseAdjustmentFormat: "Ajustement de base du loyer (IPC %s %%)",
		TaxesAndInsurance:    "Taxes et assurances de l'immeuble",
		MunicipalTaxes:       "Taxes municipales",
		SchoolTaxes:          "Taxes scolaires",
		Insurance:            "Assurances",
		MajorRepairs:         "Réparations ou améliorations majeures",
		NewExpenses:          "Nouvelles dépenses découlant de la mise en place d'un service ou de l'ajout d'un accessoire ou d'une dépendance",
		AidVariations:        "Variation ou fin d'une aide reçue pour la mise en place d'un service ou l'ajout d'un accessoire ou d'une dépendance",
		SnowRemoval:          "Frais de déneigement (parc de maisons mobiles)",
		TotalAdjustments:     "Total des ajustements",
		Result:               "Résultat du calcul",
		CurrentRent:          "Loyer mensuel actuel",
		NewRent:              "Nouveau loyer mensuel recommandé",
		Variation:            "Variation",
		SeniorResidence:      "Immeuble en tout ou en partie une résidence privée pour aînés (RPA)",
		LegalNoticeTitle:     "Avis important",
		LegalNotice:          "Ce calculateur est fourni à titre indicatif seulement et reproduit la méthodologie du Tribunal administratif du logement (TAL). Le résultat obtenu ne constitue pas une décision du TAL et ne lie pas les parties. En cas de désaccord, seul le TAL peut fixer le loyer de manière obligatoire.",
		GeneratedOnFormat:    "Document généré le %s par le calculateur %d",
	},
	English: {
		TitleFormat:          "Calculation Tool %d",
		Subtitle:             "Administrative Housing Tribunal",
		ConcernedDwelling:    "Concerned dwelling",
		NotSpecified:         "Not specified",
		Summary:              "Summary of adjustments",
		Section:              "Section",
		Description:          "Description",
		MonthlyAdjustment:    "Monthly adjustment",
		BaseAdjustmentFormat: "Base rent adjustment (CPI %s%%)",
		TaxesAndInsurance:    "Taxes and insurance of the building",
		MunicipalTaxes:       "Municipal taxes",
		SchoolTaxes:          "School taxes",
		Insurance:            "Insurance",
		MajorRepairs:         "Major repairs or improvements",
		NewExpenses:          "New expenses arising from the implementation of a service or the addition of an accessory or dependency",
		AidVariations:        "Variation or end of aid received for the implementation of a service or the addition of an accessory or dependency",
		SnowRemoval:          "Snow removal fees (mobile home parks)",
		TotalAdjustments:     "Total adjustments",
		Result:               "Calculation result",
		CurrentRent:          "Current monthly rent",
		NewRent:              "Recommended new monthly rent",
		Variation:            "Variation",
		SeniorResidence:      "Building is in whole or in part a private residence for seniors (RPA)",
		LegalNoticeTitle:     "Important notice",
		LegalNotice:          "This calculator is provided for informational purposes only and reproduces the methodology of the Administrative Housing Tribunal (TAL). The result obtained does not constitute a TAL decision and does not bind the parties. In case of disagreement, only the TAL can set the rent in a binding manner.",
		GeneratedOnFormat:    "Document generated on %s by the %d calculator",
	},
}

// For returns the catalog of a language, French when unknown.
func For(lang Language) Catalog {
	if catalog, ok := catalogs[lang]; ok {
		return catalog
	}
	return catalogs[French]
}
