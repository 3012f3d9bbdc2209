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

// Package browse advertises and ingests remote destinations and ages them
// out of the registry, per spec §4.3's browse-timeout behavior.
package browse

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one destination-set change a subscriber cares about: a remote
// printer or class appearing, changing, or aging out.
type Event[T any] struct {
	Kind    string // "added", "updated", "removed"
	Payload T
}

// Bus is a tiny generic pub/sub used to fan a browse event out to every
// interested subscriber (e.g. a client holding an IPP subscription, or the
// implicit-class reconciler) without those subscribers needing to poll the
// registry themselves. Each subscription gets a uuid so Unsubscribe can
// target it even if two subscribers registered the identical filter.
type Bus[T any] struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]func(Event[T])
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uuid.UUID]func(Event[T]))}
}

// Subscribe registers fn to be called for every fireEvent; returns an id
// for Unsubscribe.
func (b *Bus[T]) Subscribe(fn func(Event[T])) uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.subs[id] = fn
	return id
}

func (b *Bus[T]) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// fireEvent delivers ev to every current subscriber. Subscribers run
// synchronously and must not block; the event loop is single-threaded
// (spec §5) and a slow subscriber would stall every other fd.
func (b *Bus[T]) fireEvent(ev Event[T]) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(ev)
	}
}
