package backpressure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBoundsConcurrency(t *testing.T) {
	a := assert.New(t)
	l := NewLimiter(2, 0)
	ctx := context.Background()

	a.NoError(l.Acquire(ctx, false))
	a.NoError(l.Acquire(ctx, false))
	a.Equal(2, l.Live())

	acquired := make(chan struct{})
	go func() {
		a.NoError(l.Acquire(ctx, false))
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire should have blocked")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("third acquire never unblocked after release")
	}
}

func TestLimiterReanimatedJumpsQueue(t *testing.T) {
	a := assert.New(t)
	l := NewLimiter(1, 0)
	ctx := context.Background()
	a.NoError(l.Acquire(ctx, false))

	var order []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.NoError(l.Acquire(ctx, false))
		mu.Lock()
		order = append(order, "new")
		mu.Unlock()
		l.Release()
	}()
	time.Sleep(10 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.NoError(l.Acquire(ctx, true))
		mu.Lock()
		order = append(order, "reanimated")
		mu.Unlock()
		l.Release()
	}()
	time.Sleep(10 * time.Millisecond)

	l.Release()
	wg.Wait()

	a.Equal([]string{"reanimated", "new"}, order)
}

func TestLimiterUnlimitedNeverBlocks(t *testing.T) {
	a := assert.New(t)
	l := NewLimiter(0, 0)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		a.NoError(l.Acquire(ctx, false))
	}
	a.Equal(100, l.Live())
}

func TestWaitPipeBudgetWithNoRateNeverBlocks(t *testing.T) {
	a := assert.New(t)
	l := NewLimiter(1, 0)
	a.NoError(l.WaitPipeBudget(context.Background(), 1<<20))
}
