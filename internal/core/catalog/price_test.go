package catalog

import (
	"math"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestResolvePrice(t *testing.T) {
	tests := []struct {
		name    string
		numeric *float64
		label   string
		want    float64
	}{
		{"Numeric", fptr(1250), "₦9,999", 1250},
		{"NilNumericParsesLabel", nil, "₦1,000.00", 1000},
		{"NaNNumericParsesLabel", fptr(math.NaN()), "$5,000", 5000},
		{"NegativeNumericParsesLabel", fptr(-3), "12.50", 12.5},
		{"EuropeanLabel", nil, "1.234,56 €", 1234.56},
		{"DecimalComma", nil, "19,99", 19.99},
		{"DottedThousands", nil, "1.234.567", 1234567},
		{"Malformed", nil, "not-a-number", 0},
		{"Empty", nil, "", 0},
		{"InfinityNumeric", fptr(math.Inf(1)), "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePrice(tt.numeric, tt.label)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDisplayPrice(t *testing.T) {
	assert.Equal(t, 800.0, DisplayPrice(domain.Product{NumericPrice: 1000, OfferPrice: fptr(800)}))
	assert.Equal(t, 1000.0, DisplayPrice(domain.Product{NumericPrice: 1000, OfferPrice: fptr(0)}))
	assert.Equal(t, 1000.0, DisplayPrice(domain.Product{NumericPrice: 1000}))
}

func TestOnSale(t *testing.T) {
	t.Run("OriginalAboveDisplay", func(t *testing.T) {
		assert.True(t, OnSale(domain.Product{NumericPrice: 900, OriginalPrice: fptr(1000)}))
	})

	t.Run("OriginalNotAbove", func(t *testing.T) {
		assert.False(t, OnSale(domain.Product{NumericPrice: 1000, OriginalPrice: fptr(1000)}))
	})

	t.Run("OfferBelowNumeric", func(t *testing.T) {
		assert.True(t, OnSale(domain.Product{NumericPrice: 1000, OfferPrice: fptr(700)}))
	})

	t.Run("ZeroOffer", func(t *testing.T) {
		assert.False(t, OnSale(domain.Product{NumericPrice: 1000, OfferPrice: fptr(0)}))
	})

	t.Run("OfferAndOriginal", func(t *testing.T) {
		p := domain.Product{NumericPrice: 1000, OfferPrice: fptr(700), OriginalPrice: fptr(1200)}
		assert.True(t, OnSale(p))
	})

	t.Run("NoDiscount", func(t *testing.T) {
		assert.False(t, OnSale(domain.Product{NumericPrice: 1000}))
	})
}

func TestMaxPrice(t *testing.T) {
	assert.Zero(t, MaxPrice(nil))
	assert.Equal(t, 5000.0, MaxPrice([]domain.Product{{NumericPrice: 5000}, {NumericPrice: 10}}))
	assert.Equal(t, 6000.0, MaxPrice([]domain.Product{{NumericPrice: 5000.01}}))
	assert.Equal(t, 1000.0, MaxPrice([]domain.Product{{NumericPrice: 1}}))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "999.90", FormatPrice(999.9))
	assert.Equal(t, "1,234.50", FormatPrice(1234.5))
	assert.Equal(t, "1,000,000.00", FormatPrice(1e6))
	assert.Equal(t, "0.00", FormatPrice(math.NaN()))
}
