package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a value as Brazilian currency: "R$ 1.234,56".
// The output round-trips through ParseDecimal.
func FormatBRL(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return brl.Sprintf("R$ %v", number.Decimal(f, number.Scale(2)))
}
