package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CatalogEventsApplier = CatalogEvents{}

// CatalogEvents applies catalog events from the broker to the snapshot
// storage and the catalog cache.
type CatalogEvents struct {
	storage port.ProductsStorage
	cache   *CatalogCache
}

func NewCatalogEvents(storage port.ProductsStorage, cache *CatalogCache) CatalogEvents {
	return CatalogEvents{storage, cache}
}

// ApplyCatalogEvents collapses events per product, the last one wins, and
// writes the outcome. The cache is updated only after storage succeeded.
func (s CatalogEvents) ApplyCatalogEvents(
	ctx context.Context, events []domain.CatalogEvent,
) error {
	const op = "CatalogEvents.ApplyCatalogEvents"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	upserts, deletes := collapseEvents(events)

	if len(upserts) != 0 {
		if err := s.storage.StoreProducts(ctx, upserts); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(deletes) != 0 {
		if err := s.storage.DeleteProducts(ctx, deletes); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if s.cache != nil {
		s.cache.ApplyEvents(events)
	}

	log.Debug("catalog events applied",
		"nUpserts", len(upserts), "nDeletes", len(deletes),
	)
	return nil
}

func collapseEvents(events []domain.CatalogEvent) (
	upserts []domain.Product, deletes []string,
) {
	last := make(map[string]int, len(events))
	for i, e := range events {
		if e.Op == domain.CatalogUpsert && e.Product == nil {
			continue
		}
		last[e.ProductID] = i
	}

	for i, e := range events {
		if last[e.ProductID] != i {
			continue
		}
		switch e.Op {
		case domain.CatalogUpsert:
			if e.Product != nil {
				upserts = append(upserts, *e.Product)
			}
		case domain.CatalogDelete:
			deletes = append(deletes, e.ProductID)
		}
	}
	return upserts, deletes
}
