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

package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/schederr"
)

// CancelJobsFunc is called by delete to cancel every job queued on a
// destination; wired to jobsched.Scheduler.CancelAllFor by the top-level
// wiring so this package doesn't import the job store.
type CancelJobsFunc func(destination string)

// Registry holds the canonical destination set (spec §4.3).
type Registry struct {
	mu            sync.RWMutex
	destinations  map[string]*Destination
	defaultName   string
	browseTimeout time.Duration
	cancelJobs    CancelJobsFunc

	// attrCache serves get-printer-attributes responses without recomputing them on every request; it is
	// rebuilt, not invalidated piecemeal, whenever a destination's
	// client-visible fields change (spec §4.3 "An attribute-cache
	// rebuild runs after any mutation").
	attrCache *lru.Cache
}

func NewRegistry(browseTimeout time.Duration, cancelJobs CancelJobsFunc) *Registry {
	return &Registry{
		destinations:  make(map[string]*Destination),
		browseTimeout: browseTimeout,
		cancelJobs:    cancelJobs,
		attrCache:     lru.New(256),
	}
}

// Find returns the named destination and whether it exists.
func (r *Registry) Find(name string) (*Destination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.destinations[name]
	return d, ok
}

// FindByURISuffix returns the destination whose URI ends in resourcePath.
func (r *Registry) FindByURISuffix(resourcePath string) (*Destination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.destinations {
		if strings.HasSuffix(d.URI, resourcePath) {
			return d, true
		}
	}
	return nil, false
}

// AddPrinter implements spec §4.3's add_printer, including the shadowing
// and renaming rules for implicit classes and remote entries of the same
// name.
func (r *Registry) AddPrinter(name string, deviceURI string, capabilities common.Bitmap) *Destination {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.destinations[name]; ok {
		switch {
		case existing.Kind == common.EDestinationKind.LocalPrinter():
			existing.DeviceURI = deviceURI
			existing.Capabilities = capabilities
			existing.touch()
			r.invalidateCacheLocked()
			return existing
		case existing.Kind == common.EDestinationKind.ImplicitClass():
			r.renameLocked(existing, "Any"+existing.Name)
		case existing.Kind.IsRemote():
			r.renameLocked(existing, existing.Name+"@"+existing.Hostname)
		}
	}

	d := NewLocalPrinter(name)
	d.DeviceURI = deviceURI
	d.Capabilities = capabilities
	r.destinations[name] = d
	r.invalidateCacheLocked()
	return d
}

// AddClass implements spec §4.3's add_class. memberNames are resolved
// against the existing destination set; an unresolved member fails the
// whole call with a not-found error (no partial class is created).
func (r *Registry) AddClass(name string, memberNames []string) (*Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range memberNames {
		if _, ok := r.destinations[m]; !ok {
			return nil, schederr.NotFound(fmt.Sprintf("class member %q does not resolve to a destination", m))
		}
	}

	if existing, ok := r.destinations[name]; ok {
		switch {
		case existing.Kind == common.EDestinationKind.LocalClass():
			existing.Members = memberNames
			existing.touch()
			r.invalidateCacheLocked()
			return existing, nil
		case existing.Kind == common.EDestinationKind.ImplicitClass():
			r.renameLocked(existing, "Any"+existing.Name)
		case existing.Kind.IsRemote():
			r.renameLocked(existing, existing.Name+"@"+existing.Hostname)
		}
	}

	d := NewLocalClass(name, memberNames)
	r.destinations[name] = d
	r.invalidateCacheLocked()
	return d, nil
}

// renameLocked moves a destination to newName; caller holds r.mu.
func (r *Registry) renameLocked(d *Destination, newName string) {
	delete(r.destinations, d.Name)
	d.Name = newName
	d.touch()
	r.destinations[newName] = d
}

// Delete implements spec §4.3's delete: cancel jobs, drop class membership
// elsewhere, clear the default if it pointed here, remove the entry.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.destinations[name]; !ok {
		return schederr.NotFound(fmt.Sprintf("destination %q does not exist", name))
	}

	if r.cancelJobs != nil {
		r.cancelJobs(name)
	}

	for _, d := range r.destinations {
		if !d.Kind.IsClass() {
			continue
		}
		for i, m := range d.Members {
			if m == name {
				d.Members = append(d.Members[:i], d.Members[i+1:]...)
				d.touch()
				break
			}
		}
	}

	delete(r.destinations, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	r.invalidateCacheLocked()
	return nil
}

// SetDefault makes name the default destination; exclusive, persisted by
// the caller (the top-level wiring flushes configuration after this call).
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.destinations[name]; !ok {
		return schederr.NotFound(fmt.Sprintf("destination %q does not exist", name))
	}
	r.defaultName = name
	return nil
}

func (r *Registry) Default() (*Destination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, false
	}
	return r.destinations[r.defaultName], true
}

// List returns a snapshot of every destination, for get-destinations.
func (r *Registry) List() []*Destination {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		out = append(out, d)
	}
	return out
}

// ExpireBrowsed implements spec §4.3's "Browse timeout": periodically
// called to delete remote entries whose browse-time has aged past
// browseTimeout.
func (r *Registry) ExpireBrowsed(now time.Time) []string {
	r.mu.Lock()
	var expired []string
	for name, d := range r.destinations {
		if d.Kind.IsRemote() && now.Sub(d.BrowseTime) > r.browseTimeout {
			expired = append(expired, name)
		}
	}
	r.mu.Unlock()

	for _, name := range expired {
		_ = r.Delete(name)
	}
	return expired
}

func (r *Registry) invalidateCacheLocked() {
	r.attrCache.Clear()
}

// AttributesFor returns a destination's cached attribute bag, rebuilding
// it via build if absent. Rebuilds are idempotent: build must be a pure
// function of the destination's current fields.
func (r *Registry) AttributesFor(name string, build func(*Destination) map[string]any) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.attrCache.Get(name); ok {
		return v.(map[string]any), true
	}

	d, ok := r.destinations[name]
	if !ok {
		return nil, false
	}

	attrs := build(d)
	r.attrCache.Add(name, attrs)
	d.dirty = false
	return attrs, true
}
