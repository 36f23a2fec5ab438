package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateLimitsConcurrency(t *testing.T) {
	const limit = 3
	const workers = 20

	g := New(limit)
	var active, peak int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			g.Release()
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
}

func TestGateAcquireHonorsContext(t *testing.T) {
	g := New(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	if err == nil {
		t.Fatal("expected context error while gate is full")
	}

	// The held slot is still usable afterwards.
	g.Release()
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	g.Release()
}

func TestGateWakesWaitersInOrder(t *testing.T) {
	g := New(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			g.Release()
		}(i)
		// Give each waiter time to queue before the next starts.
		time.Sleep(5 * time.Millisecond)
	}

	g.Release()
	wg.Wait()

	if len(order) != 3 {
		t.Fatalf("order = %v, want 3 entries", order)
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] > order[i] {
			t.Errorf("waiters woke out of FIFO order: %v", order)
		}
	}
}

func TestGateClampsLimit(t *testing.T) {
	g := New(0)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire on clamped gate: %v", err)
	}
	g.Release()
}
