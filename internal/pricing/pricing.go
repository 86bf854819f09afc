// Package pricing computes cart and order totals. It is the single
// place where the free-shipping rule lives; both checkout and the
// client cart store go through it so the numbers cannot drift apart.
package pricing

type Line struct {
	UnitPrice float64
	SalePrice *float64
	Quantity  int
}

type Config struct {
	FreeShippingThreshold float64
	DefaultShippingCost   float64
}

type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`
}

// EffectivePrice is the sale price when one is set and undercuts the
// regular price, otherwise the regular price.
func EffectivePrice(l Line) float64 {
	if l.SalePrice != nil && *l.SalePrice < l.UnitPrice {
		return *l.SalePrice
	}
	return l.UnitPrice
}

func Calculate(lines []Line, cfg Config) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += EffectivePrice(l) * float64(l.Quantity)
	}

	shipping := cfg.DefaultShippingCost
	if subtotal >= cfg.FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        subtotal + shipping,
	}
}
