package catalog

import (
	"slices"
	"strings"
	"unicode"

	"github.com/niksmo/storefront/internal/core/domain"
)

// DefaultFilters returns the filter state that keeps the whole catalog.
func DefaultFilters(maxPrice float64) domain.ProductFilters {
	return domain.ProductFilters{PriceRange: [2]float64{0, maxPrice}}
}

// NormalizeFilters brings a filter state into canonical form.
//
// Price bounds are clamped into [0, maxPrice] with min <= max, a zero upper
// bound means maxPrice. Unknown availability values and ratings outside 1..5
// are dropped. Set dimensions are de-duplicated and sorted.
func NormalizeFilters(
	f domain.ProductFilters, maxPrice float64,
) domain.ProductFilters {
	lo, hi := f.PriceRange[0], f.PriceRange[1]
	if !validPrice(lo) {
		lo = 0
	}
	if !validPrice(hi) || hi == 0 {
		hi = maxPrice
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	lo = min(lo, maxPrice)
	hi = min(hi, maxPrice)

	out := domain.ProductFilters{
		PriceRange: [2]float64{lo, hi},
		Categories: normalizeStrings(f.Categories, strings.ToLower),
		Brands:     normalizeStrings(f.Brands, nil),
		OnSale:     f.OnSale,
	}

	for _, a := range f.Availability {
		if a.Valid() && !slices.Contains(out.Availability, a) {
			out.Availability = append(out.Availability, a)
		}
	}
	slices.Sort(out.Availability)

	for _, r := range f.Ratings {
		if r >= 1 && r <= 5 && !slices.Contains(out.Ratings, r) {
			out.Ratings = append(out.Ratings, r)
		}
	}
	slices.Sort(out.Ratings)

	return out
}

func normalizeStrings(vs []string, fold func(string) string) []string {
	var out []string
	for _, v := range vs {
		v = strings.TrimSpace(v)
		if fold != nil {
			v = fold(v)
		}
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Slugify turns a category name into its URL form: "Air Rifles" -> "air-rifles".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// CategoryTitle resolves a slug to the category name.
//
// Known categories win; otherwise the slug words are title-cased.
func CategoryTitle(slug string, known []domain.Category) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return ""
	}
	for _, c := range known {
		if c.Slug == slug || Slugify(c.Name) == slug {
			return c.Name
		}
	}

	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
