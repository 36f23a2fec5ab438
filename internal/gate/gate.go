// Package gate provides a bounded-concurrency admission gate with a FIFO
// waiter queue. It is shared by the history fetcher and the aggregator,
// which fan out network calls but must cap in-flight requests.
package gate

import (
	"container/list"
	"context"
	"sync"
)

// Gate admits at most limit concurrent holders. Blocked callers are
// admitted in arrival order. A Gate is private to one fetch or
// aggregation invocation and carries no cross-request state.
type Gate struct {
	mu      sync.Mutex
	limit   int
	active  int
	waiters list.List // of chan struct{}
}

// New returns a gate admitting at most limit concurrent holders.
// A limit below 1 is treated as 1.
func New(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{limit: limit}
}

// Acquire blocks until a slot is free or ctx is done. On success the
// caller must call Release exactly once.
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	if g.active < g.limit {
		g.active++
		g.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	elem := g.waiters.PushBack(ready)
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		select {
		case <-ready:
			// Lost the race: a slot was already handed to us. Give it back.
			g.mu.Unlock()
			g.Release()
			return ctx.Err()
		default:
		}
		g.waiters.Remove(elem)
		g.mu.Unlock()
		return ctx.Err()
	}
}

// Release frees a slot, handing it to the oldest waiter if any.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if front := g.waiters.Front(); front != nil {
		g.waiters.Remove(front)
		close(front.Value.(chan struct{}))
		return
	}
	if g.active > 0 {
		g.active--
	}
}
