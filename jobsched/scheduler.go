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

package jobsched

import (
	"sort"
	"sync"
	"time"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/registry"
)

// StartFunc spawns a job's filter pipeline; returns an error if the
// pipeline could not be started (e.g. FilterLimit exceeded), in which case
// the job is left pending for the next admission pass. Wired to
// pipeline.Builder.Start by the top-level wiring.
type StartFunc func(job *jobstore.Job, dest *registry.Destination) error

// Scheduler implements spec §4.4's admission rule and state machine on top
// of a jobstore.Store and registry.Registry. Deliberately not a package
// singleton: the top-level wiring owns exactly one Scheduler value and
// passes it to whatever needs it, the way the rest of this module avoids
// global mutable state except where the teacher's UI-hooks idiom is kept
// intentionally.
type Scheduler struct {
	mu sync.Mutex

	store    *jobstore.Store
	registry *registry.Registry
	start    StartFunc

	maxJobsPerUser    int
	maxJobsPerPrinter int

	processingByDest map[string]int // destination/member name -> running job count
}

func NewScheduler(store *jobstore.Store, reg *registry.Registry, start StartFunc, maxJobsPerUser, maxJobsPerPrinter int) *Scheduler {
	return &Scheduler{
		store:             store,
		registry:          reg,
		start:             start,
		maxJobsPerUser:    maxJobsPerUser,
		maxJobsPerPrinter: maxJobsPerPrinter,
		processingByDest:  make(map[string]int),
	}
}

// RunAdmission implements spec §4.4's "Admission rule": for each
// destination, in priority+age order, try to start its best eligible
// pending job. Called by the event loop on every wake-up where a job or
// destination state change might have made a new admission possible.
func (s *Scheduler) RunAdmission(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dest := range s.registry.List() {
		if dest.Kind.IsClass() {
			s.admitForClassLocked(dest, now)
			continue
		}
		s.admitForPrinterLocked(dest, now)
	}
}

func (s *Scheduler) admitForPrinterLocked(dest *registry.Destination, now time.Time) {
	if dest.State != common.EDestinationState.Idle() || !dest.AcceptingJobs {
		return
	}
	if s.maxJobsPerPrinter > 0 && s.processingByDest[dest.Name] >= s.maxJobsPerPrinter {
		return
	}

	job := s.bestEligiblePendingLocked(dest.Name, now)
	if job == nil {
		return
	}
	s.admitLocked(job, dest)
}

// admitForClassLocked picks one idle, accepting, not-already-processing
// member to receive the class's best eligible pending job (spec §4.4
// "if the job targets a class, pick a member that is idle, accepting, and
// not already processing another job from this class").
func (s *Scheduler) admitForClassLocked(class *registry.Destination, now time.Time) {
	job := s.bestEligiblePendingLocked(class.Name, now)
	if job == nil {
		return
	}

	for _, memberName := range class.Members {
		member, ok := s.registry.Find(memberName)
		if !ok {
			continue
		}
		if member.State != common.EDestinationState.Idle() || !member.AcceptingJobs {
			continue
		}
		if s.processingByDest[memberName] > 0 {
			continue
		}
		if s.maxJobsPerPrinter > 0 && s.processingByDest[memberName] >= s.maxJobsPerPrinter {
			continue
		}
		s.admitLocked(job, member)
		return
	}
}

// bestEligiblePendingLocked returns the highest-priority pending job
// targeting destination whose hold-until has elapsed, ties broken by id
// (older first), or nil.
func (s *Scheduler) bestEligiblePendingLocked(destination string, now time.Time) *jobstore.Job {
	candidates := s.store.List(destination)
	sort.Slice(candidates, func(i, k int) bool {
		if candidates[i].Priority != candidates[k].Priority {
			return candidates[i].Priority > candidates[k].Priority
		}
		return candidates[i].ID < candidates[k].ID
	})

	for _, j := range candidates {
		if j.GetState() != common.EJobState.Pending() {
			continue
		}
		if j.AwaitingDocs {
			continue
		}
		if !j.HoldUntilAt.IsZero() && j.HoldUntilAt.After(now) {
			continue
		}
		if s.maxJobsPerUser > 0 && s.countProcessingByUserLocked(j.Owner) >= s.maxJobsPerUser {
			continue
		}
		return j
	}
	return nil
}

func (s *Scheduler) countProcessingByUserLocked(owner string) int {
	count := 0
	for _, j := range s.store.List("") {
		if j.Owner == owner && j.GetState() == common.EJobState.Processing() {
			count++
		}
	}
	return count
}

func (s *Scheduler) admitLocked(job *jobstore.Job, dest *registry.Destination) {
	if s.start != nil {
		if err := s.start(job, dest); err != nil {
			return // left pending; next admission pass retries
		}
	}
	job.SetState(common.EJobState.Processing())
	dest.State = common.EDestinationState.Processing()
	s.processingByDest[dest.Name]++
}

// FinishJob transitions a processing job to its terminal (or retry) state
// per spec §4.4's table, and frees the destination slot it held.
func (s *Scheduler) FinishJob(job *jobstore.Job, dest *registry.Destination, outcome common.JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.SetState(outcome)
	if outcome.IsTerminal() {
		s.store.MarkTerminal(job)
	}

	if s.processingByDest[dest.Name] > 0 {
		s.processingByDest[dest.Name]--
	}
	if s.processingByDest[dest.Name] == 0 {
		dest.State = common.EDestinationState.Idle()
	}
}

// CancelAllFor cancels every non-terminal job targeting destination; used
// by registry.Registry.Delete via its CancelJobsFunc callback.
func (s *Scheduler) CancelAllFor(destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.store.List(destination) {
		if !j.GetState().IsTerminal() {
			j.SetState(common.EJobState.Cancelled())
			s.store.MarkTerminal(j)
		}
	}
}

// MoveJob implements spec §4.4's move-job: rebind a non-terminal job to a
// different destination and re-admit it.
func (s *Scheduler) MoveJob(job *jobstore.Job, newDestination string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.Destination = newDestination
	if job.GetState() == common.EJobState.Processing() {
		job.SetState(common.EJobState.Pending())
	}
}
