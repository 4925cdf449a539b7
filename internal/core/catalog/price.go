package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

// ResolvePrice returns the canonical price of a product.
//
// Fallback chain: numeric value, then the parsed display label, then 0.
// The result is always finite and non-negative.
func ResolvePrice(numeric *float64, label string) float64 {
	if numeric != nil && validPrice(*numeric) {
		return *numeric
	}
	if v, ok := ParsePriceLabel(label); ok {
		return v
	}
	return 0
}

// ParsePriceLabel extracts a number from a locale formatted price such as
// "₦1,000.00", "$5,000" or "1.234,56 €".
func ParsePriceLabel(label string) (float64, bool) {
	var b strings.Builder
	for _, r := range label {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		decimals := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && decimals > 0 && decimals <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !validPrice(v) {
		return 0, false
	}
	return v, true
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// DisplayPrice is the price shown to the customer: a positive offer price
// wins over the numeric price.
func DisplayPrice(p domain.Product) float64 {
	if p.OfferPrice != nil && *p.OfferPrice > 0 {
		return *p.OfferPrice
	}
	return p.NumericPrice
}

// OnSale reports whether the display price is strictly below a reference
// price. The reference is OriginalPrice when set, otherwise NumericPrice
// when an offer is present.
func OnSale(p domain.Product) bool {
	price := DisplayPrice(p)
	if p.OriginalPrice != nil {
		return *p.OriginalPrice > price
	}
	return p.OfferPrice != nil && *p.OfferPrice > 0 && *p.OfferPrice < p.NumericPrice
}

// MaxPrice returns the highest numeric price rounded up to the next thousand.
func MaxPrice(products []domain.Product) float64 {
	var highest float64
	for _, p := range products {
		highest = max(highest, p.NumericPrice)
	}
	return math.Ceil(highest/1000) * 1000
}

// FormatPrice renders v with thousands separators and two decimals,
// e.g. 1234.5 becomes "1,234.50".
func FormatPrice(v float64) string {
	if !validPrice(v) {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
