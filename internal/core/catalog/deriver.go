package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"
)

const DefaultMemoSize = 256

type memoKey struct {
	revision uint64
	query    string
}

// A Deriver memoizes [Pipeline.Derive] on the full input tuple.
//
// Results are shared between callers and must be treated as read-only.
// A Deriver is safe for concurrent use.
type Deriver struct {
	pipeline Pipeline

	mu       sync.Mutex
	memo     *lru.Cache
	revision uint64

	computed atomic.Int64
}

func NewDeriver(pipeline Pipeline, size int) *Deriver {
	if size <= 0 {
		size = DefaultMemoSize
	}
	return &Deriver{pipeline: pipeline, memo: lru.New(size)}
}

func (d *Deriver) Derive(c Catalog, q Query) Result {
	pq := prepare(q, c.maxPrice())
	key := memoKey{revision: c.Revision, query: pq.key()}

	d.mu.Lock()
	if c.Revision != d.revision {
		d.memo.Clear()
		d.revision = c.Revision
	}
	if v, ok := d.memo.Get(key); ok {
		d.mu.Unlock()
		return v.(Result)
	}
	d.mu.Unlock()

	r := d.pipeline.derive(c, pq)
	d.computed.Add(1)

	d.mu.Lock()
	if c.Revision == d.revision {
		d.memo.Add(key, r)
	}
	d.mu.Unlock()

	return r
}

// Invalidate drops every memoized result.
func (d *Deriver) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memo.Clear()
}
