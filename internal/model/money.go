package model

import "math"

// ToCents converts a dollar amount to integer minor units, rounding to the
// nearest cent. Payment providers only accept minor units; truncation would
// undercharge half the time.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer minor units back to dollars for display.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Pricing is the derived price breakdown for a cart. The same computation
// backs the cart preview and the checkout summary, so they can never
// disagree.
type Pricing struct {
	SubtotalCents int64   `json:"subtotalCents"`
	ShippingCents int64   `json:"shippingCents"`
	TotalCents    int64   `json:"totalCents"`
	Subtotal      float64 `json:"subtotal"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
}
