package dto

import "github.com/shopspring/decimal"

// Money renders an amount as an exact JSON number. decimal.Decimal quotes itself by default and a
// float64 would round cents; decoding still accepts both numbers and strings.
type Money struct {
	decimal.Decimal
}

// MarshalJSON writes the decimal digits unquoted.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}
