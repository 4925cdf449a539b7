package catalog

import (
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

// A predicate decides whether a product stays in the derived list.
type predicate func(domain.Product) bool

// predicates builds the active predicate set for a prepared query.
//
// Inactive dimensions contribute nothing. Search replaces the category
// predicate.
func predicates(q preparedQuery, known []domain.Category) []predicate {
	var ps []predicate

	if q.search != "" {
		ps = append(ps, searchPredicate(q.search))
	} else if p := categoryPredicate(q, known); p != nil {
		ps = append(ps, p)
	}

	ps = append(ps, priceRangePredicate(q.filters.PriceRange))

	if len(q.filters.Brands) != 0 {
		ps = append(ps, brandPredicate(q.filters.Brands))
	}
	if len(q.filters.Availability) != 0 {
		ps = append(ps, availabilityPredicate(q.filters.Availability))
	}
	if len(q.filters.Ratings) != 0 {
		ps = append(ps, ratingPredicate(q.filters.Ratings))
	}
	if q.filters.OnSale {
		ps = append(ps, OnSale)
	}
	return ps
}

func matchAll(ps []predicate, p domain.Product) bool {
	for _, keep := range ps {
		if !keep(p) {
			return false
		}
	}
	return true
}

// searchPredicate expects a lower-cased query.
func searchPredicate(query string) predicate {
	return func(p domain.Product) bool {
		for _, field := range [...]string{
			p.Name, p.ShortDescription, p.Brand, p.Category,
		} {
			if strings.Contains(strings.ToLower(field), query) {
				return true
			}
		}
		return false
	}
}

func categoryPredicate(q preparedQuery, known []domain.Category) predicate {
	var titles []string
	switch {
	case q.category != "":
		titles = []string{CategoryTitle(q.category, known)}
	case len(q.filters.Categories) != 0:
		titles = make([]string, len(q.filters.Categories))
		for i, slug := range q.filters.Categories {
			titles[i] = CategoryTitle(slug, known)
		}
	default:
		return nil
	}

	return func(p domain.Product) bool {
		return containsFold(titles, p.Category)
	}
}

func priceRangePredicate(bounds [2]float64) predicate {
	return func(p domain.Product) bool {
		return p.NumericPrice >= bounds[0] && p.NumericPrice <= bounds[1]
	}
}

func brandPredicate(brands []string) predicate {
	return func(p domain.Product) bool {
		return containsFold(brands, p.Brand)
	}
}

func availabilityPredicate(selected []domain.Availability) predicate {
	wantIn := slices.Contains(selected, domain.InStock)
	wantOut := slices.Contains(selected, domain.OutOfStock)
	return func(p domain.Product) bool {
		return (wantIn && p.InStock) || (wantOut && !p.InStock)
	}
}

// ratingPredicate keeps products rated at or above any selected threshold.
func ratingPredicate(thresholds []int) predicate {
	lowest := float64(slices.Min(thresholds))
	return func(p domain.Product) bool {
		return p.Rating >= lowest
	}
}

func containsFold(vs []string, s string) bool {
	for _, v := range vs {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
