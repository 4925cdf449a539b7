package catalog

import (
	"math"
	"slices"
)

// Facets describe the filter panel options of a catalog.
type Facets struct {
	InStock    int
	OutOfStock int
	OnSale     int
	Brands     []string
	Categories []string
	MinPrice   float64
	MaxPrice   float64
}

func NewFacets(c Catalog) Facets {
	f := Facets{MaxPrice: c.maxPrice()}
	if len(c.Products) == 0 {
		return f
	}

	f.MinPrice = math.Inf(1)
	for _, p := range c.Products {
		if p.InStock {
			f.InStock++
		} else {
			f.OutOfStock++
		}
		if OnSale(p) {
			f.OnSale++
		}
		if p.Brand != "" && !slices.Contains(f.Brands, p.Brand) {
			f.Brands = append(f.Brands, p.Brand)
		}
		if p.Category != "" && !slices.Contains(f.Categories, p.Category) {
			f.Categories = append(f.Categories, p.Category)
		}
		f.MinPrice = min(f.MinPrice, p.NumericPrice)
	}
	slices.Sort(f.Brands)
	slices.Sort(f.Categories)
	return f
}
