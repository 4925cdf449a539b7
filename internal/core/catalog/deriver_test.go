package catalog

import (
	"sync"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func deriverCatalog(revision uint64) Catalog {
	return NewCatalog(revision, []domain.Product{
		{ID: "1", Name: "b", NumericPrice: 10, InStock: true},
		{ID: "2", Name: "a", NumericPrice: 20},
	}, nil)
}

func productIDs(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestDeriver(t *testing.T) {
	t.Run("MemoizesIdenticalInputs", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 8)
		c := deriverCatalog(1)
		q := Query{Sort: domain.SortNameAsc}

		r1 := d.Derive(c, q)
		r2 := d.Derive(c, q)
		assert.Equal(t, r1, r2)
		assert.EqualValues(t, 1, d.computed.Load())
	})

	t.Run("EquivalentQueriesShareEntry", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 8)
		c := deriverCatalog(1)

		d.Derive(c, Query{Filters: domain.ProductFilters{Brands: []string{"x", "y"}}})
		d.Derive(c, Query{Filters: domain.ProductFilters{Brands: []string{"y", "x"}}})
		assert.EqualValues(t, 1, d.computed.Load())
	})

	t.Run("SeparatorsInsideValues", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 8)
		c := NewCatalog(1, []domain.Product{
			{ID: "1", Brand: "a"},
			{ID: "2", Brand: "b"},
			{ID: "3", Brand: "a,b"},
		}, nil)

		joined := d.Derive(c, Query{Filters: domain.ProductFilters{Brands: []string{"a,b"}}})
		split := d.Derive(c, Query{Filters: domain.ProductFilters{Brands: []string{"a", "b"}}})

		assert.Equal(t, []string{"3"}, productIDs(joined.Products))
		assert.Equal(t, []string{"1", "2"}, productIDs(split.Products))
		assert.EqualValues(t, 2, d.computed.Load())
	})

	t.Run("RecomputesOnInputChange", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 8)
		c := deriverCatalog(1)

		d.Derive(c, Query{})
		d.Derive(c, Query{Sort: domain.SortPriceDesc})
		d.Derive(deriverCatalog(2), Query{})
		assert.EqualValues(t, 3, d.computed.Load())
	})

	t.Run("MatchesPipeline", func(t *testing.T) {
		p := NewPipeline(language.English)
		d := NewDeriver(p, 8)
		c := deriverCatalog(3)
		q := Query{
			Filters: domain.ProductFilters{Availability: []domain.Availability{domain.InStock}},
		}
		assert.Equal(t, p.Derive(c, q), d.Derive(c, q))
	})

	t.Run("Invalidate", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 8)
		c := deriverCatalog(1)

		d.Derive(c, Query{})
		d.Invalidate()
		d.Derive(c, Query{})
		assert.EqualValues(t, 2, d.computed.Load())
	})

	t.Run("ConcurrentUse", func(t *testing.T) {
		d := NewDeriver(NewPipeline(language.English), 2)
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r := d.Derive(deriverCatalog(uint64(i%3)), Query{Sort: domain.SortNameAsc})
				assert.Equal(t, 2, r.Count)
			}()
		}
		wg.Wait()
	})
}

func TestNewFacets(t *testing.T) {
	c := NewCatalog(1, []domain.Product{
		{Brand: "Gamo", Category: "Air Rifles", NumericPrice: 1200, InStock: true},
		{Brand: "Crosman", Category: "Air Pistols", NumericPrice: 300, OriginalPrice: fptr(400)},
		{Brand: "Gamo", Category: "Air Rifles", NumericPrice: 4100, InStock: true},
	}, nil)

	f := NewFacets(c)
	assert.Equal(t, 2, f.InStock)
	assert.Equal(t, 1, f.OutOfStock)
	assert.Equal(t, 1, f.OnSale)
	assert.Equal(t, []string{"Crosman", "Gamo"}, f.Brands)
	assert.Equal(t, []string{"Air Pistols", "Air Rifles"}, f.Categories)
	assert.Equal(t, 300.0, f.MinPrice)
	assert.Equal(t, 5000.0, f.MaxPrice)

	empty := NewFacets(NewCatalog(0, nil, nil))
	assert.Zero(t, empty.MinPrice)
	assert.Zero(t, empty.MaxPrice)
}
