package service

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const DefaultRecentlyViewedLimit = 10

var _ port.Storefront = Storefront{}

type Storefront struct {
	cache       *CatalogCache
	products    port.ProductGetter
	brands      port.BrandLister
	posts       port.PostLister
	viewed      port.RecentlyViewedStore
	viewedLimit int
	viewLocks   *viewLocks
}

// viewLocks serializes the read-modify-write of one visitor's list.
type viewLocks struct {
	seed    maphash.Seed
	stripes [64]sync.Mutex
}

func (l *viewLocks) lock(visitor string) func() {
	mu := &l.stripes[maphash.String(l.seed, visitor)%uint64(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}

func NewStorefront(
	cache *CatalogCache,
	products port.ProductGetter,
	brands port.BrandLister,
	posts port.PostLister,
	viewed port.RecentlyViewedStore,
	viewedLimit int,
) Storefront {
	if viewedLimit <= 0 {
		viewedLimit = DefaultRecentlyViewedLimit
	}
	return Storefront{
		cache, products, brands, posts, viewed, viewedLimit,
		&viewLocks{seed: maphash.MakeSeed()},
	}
}

func (s Storefront) ListProducts(
	ctx context.Context, q port.ProductQuery,
) (port.ProductListing, error) {
	const op = "Storefront.ListProducts"

	if err := ctx.Err(); err != nil {
		return port.ProductListing{}, fmt.Errorf("%s: %w", op, err)
	}

	res, cat, err := s.cache.Derive(ctx, q.Query)
	if err != nil {
		return port.ProductListing{}, fmt.Errorf("%s: %w", op, err)
	}

	page := max(q.Page, 1)
	return port.ProductListing{
		Products:   catalog.Page(res, page, q.Limit),
		Count:      res.Count,
		Total:      res.Total,
		Page:       page,
		TotalPages: catalog.TotalPages(res, q.Limit),
		Facets:     catalog.NewFacets(cat),
	}, nil
}

// GetProduct returns the product and records the view for a non-empty
// visitor. Products missing from the snapshot are fetched from the backend.
func (s Storefront) GetProduct(
	ctx context.Context, id, visitor string,
) (domain.Product, error) {
	const op = "Storefront.GetProduct"
	log := slog.With("op", op)

	p, ok, err := s.cache.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		p, err = s.products.GetProduct(ctx, id)
		if err != nil {
			return domain.Product{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if visitor != "" {
		if err := s.recordView(ctx, visitor, p.ID); err != nil {
			log.Warn("failed to record view", "visitor", visitor, "err", err)
		}
	}
	return p, nil
}

// recordView updates the list under a per-visitor lock. Views recorded by
// other processes sharing the store are last-writer-wins.
func (s Storefront) recordView(ctx context.Context, visitor, id string) error {
	defer s.viewLocks.lock(visitor)()

	ids, err := s.viewed.Get(ctx, visitor)
	if err != nil {
		return err
	}
	return s.viewed.Set(ctx, visitor, pushRecent(ids, id, s.viewedLimit))
}

// pushRecent moves id to the front, drops duplicates and caps the list.
func pushRecent(ids []string, id string, limit int) []string {
	out := make([]string, 0, min(len(ids)+1, limit))
	out = append(out, id)
	for _, v := range ids {
		if len(out) == limit {
			break
		}
		if v != id && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// RecentlyViewed returns the visitor's products, most recent first.
// Products no longer in the catalog are skipped.
func (s Storefront) RecentlyViewed(
	ctx context.Context, visitor string,
) ([]domain.Product, error) {
	const op = "Storefront.RecentlyViewed"

	if visitor == "" {
		return []domain.Product{}, nil
	}

	ids, err := s.viewed.Get(ctx, visitor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cat, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[string]domain.Product, len(cat.Products))
	for _, p := range cat.Products {
		byID[p.ID] = p
	}

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s Storefront) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Storefront.ListCategories"

	cat, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cat.Categories, nil
}

func (s Storefront) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	const op = "Storefront.ListBrands"

	brands, err := s.brands.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return brands, nil
}

// ListPosts lists blog posts. The storefront only shows published posts.
func (s Storefront) ListPosts(
	ctx context.Context, status domain.PostStatus,
) ([]domain.BlogPost, error) {
	const op = "Storefront.ListPosts"

	if status == "" {
		status = domain.PostPublished
	}
	if status != domain.PostPublished {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(
			domain.ErrInvalidStatus,
			domain.NewValidationError("only published posts are public",
				map[string]string{"status": "eq=published"}),
		))
	}

	posts, err := s.posts.ListPosts(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}
