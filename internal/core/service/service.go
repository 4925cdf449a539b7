// Package service implements the storefront and back-office use cases on
// top of the core ports.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
)

// Background owns the long running parts of the core: the catalog refresh
// loop and the broker components feeding it.
type Background struct {
	cache      *CatalogCache
	interval   time.Duration
	components []port.BackgroundComponent
}

func NewBackground(
	cache *CatalogCache,
	interval time.Duration,
	components ...port.BackgroundComponent,
) Background {
	return Background{cache, interval, components}
}

// Run runs the components in separate goroutines.
//
// Blocks current goroutine while components are preparing to ready state.
func (b Background) Run(ctx context.Context, stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(len(b.components))
	for _, c := range b.components {
		go c.Run(ctx, stopFn, &wg)
	}
	wg.Wait()

	go b.cache.Run(ctx, b.interval)
}

func (b Background) Close() {
	for _, c := range b.components {
		c.Close()
	}
}
