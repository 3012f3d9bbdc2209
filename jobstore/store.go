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

package jobstore

import (
	"os"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/inkwell/printsched/common"
)

// Store holds every known Job, keyed by id, plus a bounded retention cache
// of terminal jobs: spec §4.4's "retention expires" row says a completed,
// cancelled or aborted job is eventually deleted and its spool files
// unlinked. Rather than run a separate sweep, the retention cache evicts
// its oldest terminal job once it's full, unlinking that job's files as
// it goes — the same mechanism groupcache/lru gives an attribute cache,
// repurposed so "retained" literally means "still in the LRU".
type Store struct {
	mu        sync.RWMutex
	jobs      map[common.JobID]*Job
	retention *lru.Cache
}

func NewStore(retainedJobs int) *Store {
	s := &Store{
		jobs: make(map[common.JobID]*Job),
	}
	s.retention = lru.New(retainedJobs)
	s.retention.OnEvicted = func(key lru.Key, value interface{}) {
		s.reap(value.(*Job))
	}
	return s
}

func (s *Store) Add(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

func (s *Store) Get(id common.JobID) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// List returns every job matching destination ("" for all) ordered by id.
func (s *Store) List(destination string) []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if destination == "" || j.Destination == destination {
			out = append(out, j)
		}
	}
	for i := 1; i < len(out); i++ {
		for k := i; k > 0 && out[k].ID < out[k-1].ID; k-- {
			out[k], out[k-1] = out[k-1], out[k]
		}
	}
	return out
}

// MarkTerminal moves j into the retention cache once it reaches a terminal
// state (completed, cancelled, aborted); it stays reachable via Get until
// the retention cache evicts it.
func (s *Store) MarkTerminal(j *Job) {
	if !j.GetState().IsTerminal() {
		return
	}
	s.retention.Add(j.ID, j)
}

// reap unlinks a terminal job's spool files and removes it from the store;
// called only as an LRU eviction callback.
func (s *Store) reap(j *Job) {
	s.mu.Lock()
	delete(s.jobs, j.ID)
	s.mu.Unlock()

	for _, f := range j.Files {
		_ = os.Remove(f.Path)
	}
	if j.Logger != nil {
		j.Logger.CloseLog()
	}
}

// RemoveNow force-deletes a job outside of retention, e.g. after a purge
// request; used for jobs still pending/held that a job purge must clear
// immediately rather than waiting on natural retention.
func (s *Store) RemoveNow(id common.JobID) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if ok {
		for _, f := range j.Files {
			_ = os.Remove(f.Path)
		}
	}
}
