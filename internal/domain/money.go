package domain

import "github.com/shopspring/decimal"

// minorExponent is the number of decimal places carried by the minor unit.
// Every currency the shop takes (thb, usd, eur) uses two.
const minorExponent = 2

// AmountFromMinor converts processor minor units (satang, cents) to an amount.
func AmountFromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}

// AmountToMinor converts an amount to minor units, rounding half away from zero.
func AmountToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(minorExponent).Round(0).IntPart()
}

// RoundMoney rounds to minor-unit precision.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(minorExponent)
}
