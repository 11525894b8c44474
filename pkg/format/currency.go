// Package format renders amounts for display in the user's language.
package format

import (
	"math"

	"github.com/iwvelando/tal-calculator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func isFrench(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "fr"
}

// Number returns amount with two decimals and the locale's separators.
func Number(tag language.Tag, amount float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", amount)
}

// Currency returns a dollar amount, e.g. "-$1,234.56" in English and
// "-1 234,56 $" in French.
func Currency(tag language.Tag, amount float64) string {
	amount = mathutil.Round(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	digits := Number(tag, math.Abs(amount))
	if isFrench(tag) {
		return sign + digits + " $"
	}
	return sign + "$" + digits
}

// SignedCurrency is Currency with an explicit plus sign on positive amounts.
func SignedCurrency(tag language.Tag, amount float64) string {
	if mathutil.Round(amount) > 0 {
		return "+" + Currency(tag, amount)
	}
	return Currency(tag, amount)
}

// Percent formats a value already expressed in percent with an explicit
// sign, e.g. "+3.10%" in English and "+3,10 %" in French. Values that round
// to zero carry no sign.
func Percent(tag language.Tag, value float64) string {
	value = mathutil.Round(value)
	sign := ""
	switch {
	case value > 0:
		sign = "+"
	case value < 0:
		sign = "-"
	}
	digits := Number(tag, math.Abs(value))
	if isFrench(tag) {
		return sign + digits + " %"
	}
	return sign + digits + "%"
}

// Rate formats a fraction such as 0.031 as a percentage without a sign,
// keeping a single decimal.
func Rate(tag language.Tag, fraction float64) string {
	return message.NewPrinter(tag).Sprintf("%.1f", fraction*100)
}
