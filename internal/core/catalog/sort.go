package catalog

import (
	"cmp"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type comparator func(a, b domain.Product) int

// sortProducts orders ps in place with a stable sort.
//
// featured and unknown keys keep catalog order.
func sortProducts(ps []domain.Product, key domain.SortKey, tag language.Tag) {
	cmpFn := comparatorFor(key, tag)
	if cmpFn == nil {
		return
	}
	slices.SortStableFunc(ps, cmpFn)
}

func comparatorFor(key domain.SortKey, tag language.Tag) comparator {
	switch key {
	case domain.SortPriceAsc:
		return func(a, b domain.Product) int {
			return cmp.Compare(a.NumericPrice, b.NumericPrice)
		}
	case domain.SortPriceDesc:
		return func(a, b domain.Product) int {
			return cmp.Compare(b.NumericPrice, a.NumericPrice)
		}
	case domain.SortRating:
		return func(a, b domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		}
	case domain.SortNewest:
		return func(a, b domain.Product) int {
			return cmp.Compare(newRank(a), newRank(b))
		}
	case domain.SortNameAsc, domain.SortNameDesc:
		// Collator keeps internal buffers, one per sort.
		col := collate.New(tag)
		if key == domain.SortNameDesc {
			return func(a, b domain.Product) int {
				return col.CompareString(b.Name, a.Name)
			}
		}
		return func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		}
	}
	return nil
}

func newRank(p domain.Product) int {
	if p.IsNew {
		return 0
	}
	return 1
}
