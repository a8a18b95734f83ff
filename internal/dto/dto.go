package dto

import "github.com/shopspring/decimal"

// Money renders an amount for the wire, rounded half away from zero to cents.
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func MoneyPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := Money(d.Decimal)
	return &v
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
