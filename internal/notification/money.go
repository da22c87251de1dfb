package notification

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as "700.00 THB".
func FormatMoney(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + strings.ToUpper(currency)
}
