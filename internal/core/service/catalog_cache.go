package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const coldLoadAttempts = 3

var ErrCatalogNotLoaded = errors.New("catalog is not loaded")

// A CatalogCache holds the catalog snapshot the storefront derives from.
//
// Refreshes are last-requested-wins: a refresh started later cancels the
// one in flight, and an acknowledged local mutation discards it as well.
type CatalogCache struct {
	source  port.CatalogSource
	deriver *catalog.Deriver

	seq   Sequencer
	group singleflight.Group

	mu      sync.RWMutex
	current catalog.Catalog
	loaded  bool
}

func NewCatalogCache(
	source port.CatalogSource, deriver *catalog.Deriver,
) *CatalogCache {
	if source == nil || deriver == nil {
		panic("catalog source and deriver are required") // develop mistake
	}
	return &CatalogCache{source: source, deriver: deriver}
}

// Refresh reloads products and categories from the source.
//
// It returns [ErrSuperseded] when newer work took over before the result
// could be applied.
func (c *CatalogCache) Refresh(ctx context.Context) error {
	const op = "CatalogCache.Refresh"
	log := slog.With("op", op)

	parent := ctx
	ctx, ticket := c.seq.Begin(ctx)
	defer ticket.Done()

	var (
		products   []domain.Product
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = c.source.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = c.source.ListCategories(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if parent.Err() == nil && ticket.Superseded() {
			return fmt.Errorf("%s: %w", op, ErrSuperseded)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var revision uint64
	applied := ticket.Apply(func() {
		revision = c.replace(products, categories)
	})
	if !applied {
		return fmt.Errorf("%s: %w", op, ErrSuperseded)
	}

	log.Debug("catalog refreshed",
		"revision", revision,
		"nProducts", len(products),
		"nCategories", len(categories),
	)
	return nil
}

func (c *CatalogCache) replace(
	products []domain.Product, categories []domain.Category,
) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = catalog.NewCatalog(c.current.Revision+1, products, categories)
	c.loaded = true
	return c.current.Revision
}

// Snapshot returns the current catalog, loading it on first use.
//
// Concurrent cold loads share one request to the source.
func (c *CatalogCache) Snapshot(ctx context.Context) (catalog.Catalog, error) {
	const op = "CatalogCache.Snapshot"

	if cat, ok := c.snapshot(); ok {
		return cat, nil
	}

	var err error
	for range coldLoadAttempts {
		_, err, _ = c.group.Do("load", func() (any, error) {
			if _, ok := c.snapshot(); ok {
				return nil, nil
			}
			return nil, c.Refresh(context.WithoutCancel(ctx))
		})
		if cat, ok := c.snapshot(); ok {
			return cat, nil
		}
		if !errors.Is(err, ErrSuperseded) {
			break
		}
	}
	if err == nil {
		err = ErrCatalogNotLoaded
	}
	return catalog.Catalog{}, fmt.Errorf("%s: %w", op, err)
}

func (c *CatalogCache) snapshot() (catalog.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.loaded
}

// Derive runs the memoized pipeline over the current snapshot.
func (c *CatalogCache) Derive(
	ctx context.Context, q catalog.Query,
) (catalog.Result, catalog.Catalog, error) {
	cat, err := c.Snapshot(ctx)
	if err != nil {
		return catalog.Result{}, catalog.Catalog{}, err
	}
	return c.deriver.Derive(cat, q), cat, nil
}

// Product looks a product up by id in the current snapshot.
func (c *CatalogCache) Product(
	ctx context.Context, id string,
) (domain.Product, bool, error) {
	cat, err := c.Snapshot(ctx)
	if err != nil {
		return domain.Product{}, false, err
	}
	i := slices.IndexFunc(cat.Products, func(p domain.Product) bool {
		return p.ID == id
	})
	if i < 0 {
		return domain.Product{}, false, nil
	}
	return cat.Products[i], true, nil
}

// Upsert replaces the product with the same id or appends a new one.
func (c *CatalogCache) Upsert(p domain.Product) {
	c.mutate(func(products []domain.Product, categories []domain.Category) (
		[]domain.Product, []domain.Category,
	) {
		return upsertProduct(products, p), categories
	})
}

func (c *CatalogCache) Remove(id string) {
	c.mutate(func(products []domain.Product, categories []domain.Category) (
		[]domain.Product, []domain.Category,
	) {
		return removeProducts(products, id), categories
	})
}

func (c *CatalogCache) UpsertCategory(cat domain.Category) {
	c.mutate(func(products []domain.Product, categories []domain.Category) (
		[]domain.Product, []domain.Category,
	) {
		out := slices.Clone(categories)
		i := slices.IndexFunc(out, func(v domain.Category) bool { return v.ID == cat.ID })
		if i < 0 {
			return products, append(out, cat)
		}
		out[i] = cat
		return products, out
	})
}

func (c *CatalogCache) RemoveCategory(id string) {
	c.mutate(func(products []domain.Product, categories []domain.Category) (
		[]domain.Product, []domain.Category,
	) {
		return products, slices.DeleteFunc(slices.Clone(categories),
			func(v domain.Category) bool { return v.ID == id },
		)
	})
}

// ApplyEvents applies catalog events in order under a single revision.
func (c *CatalogCache) ApplyEvents(events []domain.CatalogEvent) {
	if len(events) == 0 {
		return
	}
	c.mutate(func(products []domain.Product, categories []domain.Category) (
		[]domain.Product, []domain.Category,
	) {
		for _, e := range events {
			switch e.Op {
			case domain.CatalogUpsert:
				if e.Product != nil {
					products = upsertProduct(products, *e.Product)
				}
			case domain.CatalogDelete:
				products = removeProducts(products, e.ProductID)
			}
		}
		return products, categories
	})
}

type mutateFn func([]domain.Product, []domain.Category) (
	[]domain.Product, []domain.Category,
)

// mutate supersedes in-flight refreshes and applies fn to a loaded catalog.
// An unloaded catalog picks the change up on its first load.
func (c *CatalogCache) mutate(fn mutateFn) {
	c.seq.Supersede(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.loaded {
			return
		}
		products, categories := fn(c.current.Products, c.current.Categories)
		c.current = catalog.NewCatalog(c.current.Revision+1, products, categories)
	})
}

// Run refreshes the catalog every interval until ctx is done.
func (c *CatalogCache) Run(ctx context.Context, interval time.Duration) {
	const op = "CatalogCache.Run"
	log := slog.With("op", op)

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("catalog refresh loop is running", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("catalog refresh loop is stopped")
			return
		case <-ticker.C:
			err := c.Refresh(ctx)
			if err == nil || errors.Is(err, ErrSuperseded) || ctx.Err() != nil {
				continue
			}
			log.Error("failed to refresh catalog", "err", err)
		}
	}
}

// upsertProduct never modifies products, snapshots share their slices.
func upsertProduct(products []domain.Product, p domain.Product) []domain.Product {
	out := slices.Clone(products)
	i := slices.IndexFunc(out, func(v domain.Product) bool { return v.ID == p.ID })
	if i < 0 {
		return append(out, p)
	}
	out[i] = p
	return out
}

func removeProducts(products []domain.Product, id string) []domain.Product {
	return slices.DeleteFunc(slices.Clone(products), func(v domain.Product) bool {
		return v.ID == id
	})
}

// A SnapshotSource reads the catalog from the local snapshot storage.
type SnapshotSource struct {
	products   port.ProductsStorage
	categories port.CategoryLister
}

var _ port.CatalogSource = SnapshotSource{}

func NewSnapshotSource(
	products port.ProductsStorage, categories port.CategoryLister,
) SnapshotSource {
	return SnapshotSource{products, categories}
}

func (s SnapshotSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s SnapshotSource) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}
