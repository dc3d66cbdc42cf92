package vendors

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatPrice renders amount in the given ISO currency, e.g. "$190.25".
// Unknown currencies fall back to two decimals followed by the code.
func FormatPrice(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
