// Copyright © 2026 printsched contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package backpressure admits concurrent filter pipelines against a single
// daemon-wide slot count the way the teacher's pacer package
// admits concurrent network requests against a bandwidth cap: a fixed pool
// of "live" slots, fed from a FIFO queue, with requeued (reanimated) work
// given priority over brand-new work so a process that's already mid-pipeline
// doesn't starve behind new admissions.
package backpressure

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter bounds how many filter pipelines may run concurrently (the daemon
// shares one Limiter across all destinations, and pipeline.Builder.Start
// takes one slot per pipeline), and separately paces how fast bytes may
// cross status pipes, so a chatty filter cannot starve the event loop's
// other fds.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	live     int
	waiters  *list.List // of chan struct{}

	pipeRate *rate.Limiter
}

// NewLimiter builds a Limiter admitting at most capacity concurrent slot
// holders (0 meaning unlimited) and throttling status
// pipe reads to byteRate bytes/sec with a burst of the same size.
func NewLimiter(capacity int, byteRate int) *Limiter {
	l := &Limiter{
		capacity: capacity,
		waiters:  list.New(),
	}
	if byteRate > 0 {
		l.pipeRate = rate.NewLimiter(rate.Limit(byteRate), byteRate)
	}
	return l
}

// Acquire blocks until a slot is free or ctx is cancelled. reanimated
// requests (a held job resuming after its filters were already spawned once)
// jump the queue ahead of brand-new admissions.
func (l *Limiter) Acquire(ctx context.Context, reanimated bool) error {
	l.mu.Lock()
	if l.capacity == 0 || l.live < l.capacity {
		l.live++
		l.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	var elem *list.Element
	if reanimated {
		elem = l.waiters.PushFront(ch)
	} else {
		elem = l.waiters.PushBack(ch)
	}
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.waiters.Remove(elem)
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Release frees the slot held by a prior Acquire, waking the longest-waiting
// (or highest priority) queued acquirer if any.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if front := l.waiters.Front(); front != nil {
		l.waiters.Remove(front)
		close(front.Value.(chan struct{}))
		return
	}
	l.live--
}

// Live reports the number of processes currently holding a slot.
func (l *Limiter) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

// WaitPipeBudget blocks until n bytes of status-pipe traffic may be read,
// or ctx is cancelled. A Limiter with no byte rate configured never blocks.
func (l *Limiter) WaitPipeBudget(ctx context.Context, n int) error {
	if l.pipeRate == nil {
		return nil
	}
	return l.pipeRate.WaitN(ctx, n)
}
