package service

import (
	"shopco-api/internal/dto"
	"shopco-api/internal/model"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// cartTotals is the unrounded cart summary. Rounding happens only in view().
type cartTotals struct {
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	DiscountPercentage int64
	DeliveryFee        decimal.Decimal
	Total              decimal.Decimal
}

// summarizeCart prices lines at their pre-discount base: the old price when the
// product has one, the current price otherwise. The gap between the two is the discount.
func summarizeCart(lines []*model.CartItem, deliveryFee decimal.Decimal) cartTotals {
	subtotal := decimal.Zero
	discount := decimal.Zero

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		base := line.Product.Price

		if line.Product.HasOldPrice() {
			base = line.Product.OldPrice.Decimal
			discount = discount.Add(base.Sub(line.Product.Price).Mul(qty))
		}
		subtotal = subtotal.Add(base.Mul(qty))
	}

	var pct int64
	if subtotal.IsPositive() {
		pct = roundHalfUp(discount.Div(subtotal).Mul(hundred))
	}

	return cartTotals{
		Subtotal:           subtotal,
		Discount:           discount,
		DiscountPercentage: pct,
		DeliveryFee:        deliveryFee,
		Total:              subtotal.Sub(discount).Add(deliveryFee),
	}
}

// roundHalfUp rounds to the nearest integer with halves going toward +inf,
// so 12.5 -> 13 and -12.5 -> -12.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

func (t cartTotals) view() dto.CartSummary {
	return dto.CartSummary{
		Subtotal:           dto.Money(t.Subtotal),
		Discount:           dto.Money(t.Discount),
		DiscountPercentage: t.DiscountPercentage,
		DeliveryFee:        dto.Money(t.DeliveryFee),
		Total:              dto.Money(t.Total),
	}
}
