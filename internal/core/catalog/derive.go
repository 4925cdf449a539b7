// Package catalog derives the product list a storefront page renders
// from the raw catalog, the filter panel state and the sort key.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"golang.org/x/text/language"
)

// A Catalog is an immutable snapshot of the products in catalog order.
//
// Revision changes whenever the snapshot content changes.
type Catalog struct {
	Revision   uint64
	Products   []domain.Product
	Categories []domain.Category
	MaxPrice   float64
}

func NewCatalog(
	revision uint64, products []domain.Product, categories []domain.Category,
) Catalog {
	return Catalog{
		Revision:   revision,
		Products:   products,
		Categories: categories,
		MaxPrice:   MaxPrice(products),
	}
}

func (c Catalog) maxPrice() float64 {
	if c.MaxPrice == 0 {
		return MaxPrice(c.Products)
	}
	return c.MaxPrice
}

// A Query is the full derivation input besides the catalog itself.
//
// Category is a URL pinned category slug, Search a free text query.
type Query struct {
	Filters  domain.ProductFilters
	Sort     domain.SortKey
	Category string
	Search   string
}

type Result struct {
	Products []domain.Product
	// Count is len(Products), Total the catalog size.
	Count int
	Total int
}

type preparedQuery struct {
	filters  domain.ProductFilters
	sort     domain.SortKey
	category string
	search   string
}

func prepare(q Query, maxPrice float64) preparedQuery {
	sort := q.Sort
	if !sort.Valid() {
		sort = domain.SortFeatured
	}
	return preparedQuery{
		filters:  NormalizeFilters(q.Filters, maxPrice),
		sort:     sort,
		category: strings.ToLower(strings.TrimSpace(q.Category)),
		search:   strings.ToLower(strings.TrimSpace(q.Search)),
	}
}

// key is the canonical identity of a prepared query.
func (q preparedQuery) key() string {
	f := q.filters
	avail := make([]string, len(f.Availability))
	for i, a := range f.Availability {
		avail[i] = string(a)
	}
	return fmt.Sprintf("p=%g:%g|c=%s|b=%s|a=%s|r=%v|s=%t|sort=%q|cat=%q|q=%q",
		f.PriceRange[0], f.PriceRange[1],
		quoteAll(f.Categories), quoteAll(f.Brands), quoteAll(avail),
		f.Ratings, f.OnSale,
		q.sort, q.category, q.search,
	)
}

// quoteAll quotes every element so that separators inside values
// never merge two different sets.
func quoteAll(vs []string) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(v))
	}
	return b.String()
}

// A Pipeline derives results with a fixed collation for name sorting.
type Pipeline struct {
	collation language.Tag
}

func NewPipeline(collation language.Tag) Pipeline {
	return Pipeline{collation: collation}
}

// Derive filters and sorts the catalog. It never modifies c.
func (p Pipeline) Derive(c Catalog, q Query) Result {
	return p.derive(c, prepare(q, c.maxPrice()))
}

func (p Pipeline) derive(c Catalog, q preparedQuery) Result {
	ps := predicates(q, c.Categories)

	out := make([]domain.Product, 0, len(c.Products))
	for _, product := range c.Products {
		if matchAll(ps, product) {
			out = append(out, product)
		}
	}

	sortProducts(out, q.sort, p.collation)

	return Result{Products: out, Count: len(out), Total: len(c.Products)}
}

// Derive runs the pipeline with English collation.
func Derive(c Catalog, q Query) Result {
	return NewPipeline(language.English).Derive(c, q)
}

// Page returns the 1-based page of size items out of r.
//
// A non-positive size returns everything; pages past the end are empty.
func Page(r Result, page, size int) []domain.Product {
	if size <= 0 {
		return r.Products
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(r.Products) {
		return []domain.Product{}
	}
	end := min(start+size, len(r.Products))
	return r.Products[start:end]
}

// TotalPages reports how many pages of size items r spans.
func TotalPages(r Result, size int) int {
	if size <= 0 || r.Count == 0 {
		return 1
	}
	return (r.Count + size - 1) / size
}
