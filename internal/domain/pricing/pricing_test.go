package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		itemsCents   int64
		wantTax      int64
		wantShipping int64
		wantGrand    int64
	}{
		{
			name:         "above free shipping threshold",
			itemsCents:   150_00,
			wantTax:      15_00,
			wantShipping: 0,
			wantGrand:    165_00,
		},
		{
			name:         "below threshold pays flat fee",
			itemsCents:   50_00,
			wantTax:      5_00,
			wantShipping: 10_00,
			wantGrand:    65_00,
		},
		{
			name:         "exactly at threshold still pays shipping",
			itemsCents:   100_00,
			wantTax:      10_00,
			wantShipping: 10_00,
			wantGrand:    120_00,
		},
		{
			name:         "empty total",
			itemsCents:   0,
			wantTax:      0,
			wantShipping: 10_00,
			wantGrand:    10_00,
		},
		{
			name:         "tax rounds to nearest cent",
			itemsCents:   99_99, // 10% = 999.9 -> 1000
			wantTax:      10_00,
			wantShipping: 10_00,
			wantGrand:    119_99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(tt.itemsCents, cfg)
			assert.Equal(t, tt.itemsCents, got.ItemsTotalCents)
			assert.Equal(t, tt.wantTax, got.TaxCents)
			assert.Equal(t, tt.wantShipping, got.ShippingCents)
			assert.Equal(t, tt.wantGrand, got.GrandTotalCents)
		})
	}
}

func TestQuoteLines(t *testing.T) {
	cfg := DefaultConfig()

	lines := []Line{
		{UnitPriceCents: 25_00, Quantity: 2},
		{UnitPriceCents: 10_00, Quantity: 3},
	}

	got := QuoteLines(lines, cfg)
	assert.Equal(t, int64(80_00), got.ItemsTotalCents)
	assert.Equal(t, got.ItemsTotalCents+got.TaxCents+got.ShippingCents, got.GrandTotalCents)
}

func TestQuoteDeterministic(t *testing.T) {
	cfg := Config{TaxRate: 0.13, FreeShippingThresholdCents: 75_00, FlatShippingFeeCents: 7_50}

	lines := []Line{
		{UnitPriceCents: 19_99, Quantity: 3},
		{UnitPriceCents: 5_25, Quantity: 1},
	}

	first := QuoteLines(lines, cfg)
	second := QuoteLines(lines, cfg)
	assert.Equal(t, first, second)
}

func TestGrandTotalInvariant(t *testing.T) {
	cfg := DefaultConfig()

	for _, items := range []int64{0, 1, 99_99, 100_00, 100_01, 12345_67} {
		got := Quote(items, cfg)
		assert.Equal(t, got.ItemsTotalCents+got.TaxCents+got.ShippingCents, got.GrandTotalCents,
			"items=%d", items)
	}
}
