package catalog_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func testCatalog() catalog.Catalog {
	products := []domain.Product{
		{ID: "1", Name: "Zephyr Air Rifle", NumericPrice: 1000, Category: "Air Rifles",
			Brand: "Gamo", Rating: 4, InStock: true, IsNew: true},
		{ID: "2", Name: "apex pistol", NumericPrice: 5000, Category: "Air Pistols",
			Brand: "Crosman", Rating: 3, InStock: false},
		{ID: "3", Name: "Mamba Scope", NumericPrice: 2500, Category: "Optics",
			Brand: "Gamo", Rating: 5, InStock: true, OriginalPrice: ptr(3000),
			ShortDescription: "Compact rifle scope"},
		{ID: "4", Name: "Échelle Target", NumericPrice: 300, Category: "Targets",
			Brand: "Beeman", Rating: 2, InStock: true, IsNew: true},
		{ID: "5", Name: "Bolt Pellets", NumericPrice: 300, Category: "Ammo",
			Brand: "Crosman", Rating: 0, InStock: false},
	}
	categories := []domain.Category{
		{ID: "c1", Name: "Air Rifles", Slug: "air-rifles"},
		{ID: "c2", Name: "Air Pistols", Slug: "air-pistols"},
	}
	return catalog.NewCatalog(1, products, categories)
}

func TestDerive(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: domain.SortFeatured})
		assert.Equal(t, ids(c.Products), ids(r.Products))
		assert.Equal(t, len(c.Products), r.Count)
		assert.Equal(t, len(c.Products), r.Total)
	})

	t.Run("Idempotence", func(t *testing.T) {
		c := testCatalog()
		q := catalog.Query{
			Filters: domain.ProductFilters{Brands: []string{"Gamo", "Crosman"}},
			Sort:    domain.SortPriceDesc,
		}
		r1 := catalog.Derive(c, q)
		r2 := catalog.Derive(c, q)
		assert.Equal(t, r1, r2)
	})

	t.Run("DoesNotModifyCatalog", func(t *testing.T) {
		c := testCatalog()
		before := ids(c.Products)
		catalog.Derive(c, catalog.Query{Sort: domain.SortPriceAsc})
		assert.Equal(t, before, ids(c.Products))
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		r := catalog.Derive(catalog.NewCatalog(0, nil, nil), catalog.Query{
			Search: "rifle", Sort: domain.SortNameAsc,
		})
		assert.Empty(t, r.Products)
		assert.Zero(t, r.Count)
		assert.Zero(t, r.Total)
	})

	t.Run("PriceRangeBoundary", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{PriceRange: [2]float64{1000, 2500}},
		})
		assert.Equal(t, []string{"1", "3"}, ids(r.Products))

		r = catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{PriceRange: [2]float64{1001, 2499}},
		})
		assert.Empty(t, r.Products)
	})

	t.Run("NewestIsStable", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: domain.SortNewest})
		assert.Equal(t, []string{"1", "4", "2", "3", "5"}, ids(r.Products))
	})

	t.Run("PriceAscKeepsTiesInOrder", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: domain.SortPriceAsc})
		assert.Equal(t, []string{"4", "5", "1", "3", "2"}, ids(r.Products))
	})

	t.Run("RatingDescending", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: domain.SortRating})
		assert.Equal(t, []string{"3", "1", "2", "4", "5"}, ids(r.Products))
	})

	t.Run("NameIsLocaleAware", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: domain.SortNameAsc})
		assert.Equal(t, []string{"2", "5", "4", "3", "1"}, ids(r.Products))

		r = catalog.Derive(c, catalog.Query{Sort: domain.SortNameDesc})
		assert.Equal(t, []string{"1", "3", "4", "5", "2"}, ids(r.Products))
	})

	t.Run("UnknownSortIsFeatured", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Sort: "popularity"})
		assert.Equal(t, ids(c.Products), ids(r.Products))
	})

	t.Run("RatingOrSemantics", func(t *testing.T) {
		c := catalog.NewCatalog(1, []domain.Product{
			{ID: "four", Rating: 4},
			{ID: "two", Rating: 2},
			{ID: "five", Rating: 5},
		}, nil)
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{Ratings: []int{3, 5}},
		})
		assert.Equal(t, []string{"four", "five"}, ids(r.Products))
	})

	t.Run("SearchOverridesCategory", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{
			Search:   "RIFLE",
			Category: "air-pistols",
			Filters:  domain.ProductFilters{Categories: []string{"targets"}},
		})
		assert.Equal(t, []string{"1", "3"}, ids(r.Products))

		searchOnly := catalog.Derive(c, catalog.Query{Search: "rifle"})
		assert.Equal(t, ids(searchOnly.Products), ids(r.Products))
	})

	t.Run("PinnedCategory", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{Category: "air-rifles"})
		assert.Equal(t, []string{"1"}, ids(r.Products))
	})

	t.Run("CategoryFilterSet", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{Categories: []string{"air-pistols", "optics"}},
		})
		assert.Equal(t, []string{"2", "3"}, ids(r.Products))
	})

	t.Run("BrandAndAvailability", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{
				Brands:       []string{"crosman"},
				Availability: []domain.Availability{domain.OutOfStock},
			},
		})
		assert.Equal(t, []string{"2", "5"}, ids(r.Products))

		r = catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{
				Availability: []domain.Availability{domain.InStock, domain.OutOfStock},
			},
		})
		assert.Len(t, r.Products, 5)
	})

	t.Run("OnSale", func(t *testing.T) {
		c := testCatalog()
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{OnSale: true},
		})
		assert.Equal(t, []string{"3"}, ids(r.Products))
	})

	t.Run("ExampleScenario", func(t *testing.T) {
		c := catalog.NewCatalog(1, []domain.Product{
			{ID: "a", NumericPrice: 1000, Category: "Air Rifles", Rating: 4, IsNew: true},
			{ID: "b", NumericPrice: 5000, Category: "Air Pistols", Rating: 3},
		}, nil)
		r := catalog.Derive(c, catalog.Query{
			Filters: domain.ProductFilters{
				PriceRange: [2]float64{0, 10000},
				Ratings:    []int{4},
			},
			Sort: domain.SortNewest,
		})
		require.Equal(t, 1, r.Count)
		assert.Equal(t, []string{"a"}, ids(r.Products))
	})
}

func TestPage(t *testing.T) {
	r := catalog.Derive(testCatalog(), catalog.Query{})

	assert.Equal(t, []string{"1", "2"}, ids(catalog.Page(r, 1, 2)))
	assert.Equal(t, []string{"5"}, ids(catalog.Page(r, 3, 2)))
	assert.Empty(t, catalog.Page(r, 4, 2))
	assert.Len(t, catalog.Page(r, 1, 0), 5)
	assert.Equal(t, 3, catalog.TotalPages(r, 2))
	assert.Equal(t, 1, catalog.TotalPages(catalog.Result{}, 2))
}
