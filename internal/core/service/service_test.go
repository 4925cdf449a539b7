package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
)

type fakeComponent struct {
	ran    atomic.Bool
	closed atomic.Bool
}

func (c *fakeComponent) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	c.ran.Store(true)
	wg.Done()
}

func (c *fakeComponent) Close() {
	c.closed.Store(true)
}

func TestBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	c1, c2 := new(fakeComponent), new(fakeComponent)
	b := service.NewBackground(loadedCache(t, testProducts()), time.Hour, c1, c2)

	b.Run(ctx, cancel)
	assert.True(t, c1.ran.Load())
	assert.True(t, c2.ran.Load())

	b.Close()
	assert.True(t, c1.closed.Load())
	assert.True(t, c2.closed.Load())
}
