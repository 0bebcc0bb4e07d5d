// Package pricing computes checkout display totals.
package pricing

import "math"

// Line is one priced cart entry
type Line struct {
	ProductID      int64
	UnitPrice      float64
	Quantity       int
	CharityPercent float64
}

// Rates holds the tax rate (0.08 = 8%) and flat shipping fee
type Rates struct {
	TaxRate     float64
	ShippingFee float64
}

// Summary is the cents-rounded breakdown of a cart
type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Charity  float64 `json:"charity"`
	Total    float64 `json:"total"`
}

// Quote totals lines. Shipping is charged once per non-empty cart; the charity
// share is carved out of the subtotal and does not change the total.
func Quote(lines []Line, rates Rates) Summary {
	var subtotal, charity float64
	for _, l := range lines {
		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := l.UnitPrice * float64(qty)
		subtotal += lineTotal
		charity += lineTotal * l.CharityPercent / 100
	}

	var shipping float64
	if len(lines) > 0 {
		shipping = rates.ShippingFee
	}

	subtotal = roundCents(subtotal)
	tax := roundCents(subtotal * rates.TaxRate)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: roundCents(shipping),
		Charity:  roundCents(charity),
		Total:    roundCents(subtotal + tax + shipping),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
