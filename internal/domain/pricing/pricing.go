// Package pricing computes checkout totals from a cart snapshot. It is pure:
// no I/O, no hidden state, deterministic given the same lines and config. The
// checkout quote endpoint and the order factory both call it, which is what
// guarantees the advisory and authoritative totals agree.
package pricing

import "math"

type Config struct {
	// TaxRate is applied to the items total, e.g. 0.10 for 10%.
	TaxRate float64
	// FreeShippingThresholdCents: shipping is free when the items total is
	// strictly above this.
	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
}

func DefaultConfig() Config {
	return Config{
		TaxRate:                    0.10,
		FreeShippingThresholdCents: 100_00,
		FlatShippingFeeCents:       10_00,
	}
}

type Line struct {
	UnitPriceCents int64
	Quantity       int
}

type Totals struct {
	ItemsTotalCents int64 `json:"items_total_cents"`
	TaxCents        int64 `json:"tax_cents"`
	ShippingCents   int64 `json:"shipping_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`
}

// Quote prices an items total. Tax is rounded to the nearest cent.
func Quote(itemsTotalCents int64, cfg Config) Totals {
	t := Totals{ItemsTotalCents: itemsTotalCents}
	t.TaxCents = int64(math.Round(float64(itemsTotalCents) * cfg.TaxRate))
	if itemsTotalCents <= cfg.FreeShippingThresholdCents {
		t.ShippingCents = cfg.FlatShippingFeeCents
	}
	t.GrandTotalCents = t.ItemsTotalCents + t.TaxCents + t.ShippingCents
	return t
}

// QuoteLines sums the lines and prices the result.
func QuoteLines(lines []Line, cfg Config) Totals {
	var items int64
	for _, l := range lines {
		items += l.UnitPriceCents * int64(l.Quantity)
	}
	return Quote(items, cfg)
}
