package jobsched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/registry"
)

func newTestPrinter(reg *registry.Registry, name string) *registry.Destination {
	return reg.AddPrinter(name, "usb://"+name, common.NewCapabilitySet())
}

func TestAdmitsHighestPriorityEligibleJob(t *testing.T) {
	a := assert.New(t)

	reg := registry.NewRegistry(time.Hour, nil)
	dest := newTestPrinter(reg, "p1")

	store := jobstore.NewStore(100)
	low := jobstore.New(1, "p1", "alice", "low", 10)
	high := jobstore.New(2, "p1", "alice", "high", 90)
	store.Add(low)
	store.Add(high)

	var started *jobstore.Job
	sched := NewScheduler(store, reg, func(j *jobstore.Job, d *registry.Destination) error {
		started = j
		return nil
	}, 0, 0)

	sched.RunAdmission(time.Now())

	a.NotNil(started)
	a.Equal(common.JobID(2), started.ID)
	a.Equal(common.EJobState.Processing(), high.GetState())
	a.Equal(common.EDestinationState.Processing(), dest.State)
}

func TestHoldUntilBlocksAdmissionUntilElapsed(t *testing.T) {
	a := assert.New(t)

	reg := registry.NewRegistry(time.Hour, nil)
	newTestPrinter(reg, "p1")

	store := jobstore.NewStore(100)
	held := jobstore.New(1, "p1", "alice", "doc", 50)
	held.HoldUntilAt = time.Now().Add(time.Hour)
	store.Add(held)

	started := false
	sched := NewScheduler(store, reg, func(j *jobstore.Job, d *registry.Destination) error {
		started = true
		return nil
	}, 0, 0)

	sched.RunAdmission(time.Now())
	a.False(started)

	held.HoldUntilAt = time.Now().Add(-time.Minute)
	sched.RunAdmission(time.Now())
	a.True(started)
}

func TestMaxJobsPerPrinterCapsConcurrentAdmission(t *testing.T) {
	a := assert.New(t)

	reg := registry.NewRegistry(time.Hour, nil)
	dest := newTestPrinter(reg, "p1")

	store := jobstore.NewStore(100)
	j1 := jobstore.New(1, "p1", "alice", "d1", 50)
	j2 := jobstore.New(2, "p1", "bob", "d2", 50)
	store.Add(j1)
	store.Add(j2)

	startedCount := 0
	sched := NewScheduler(store, reg, func(j *jobstore.Job, d *registry.Destination) error {
		startedCount++
		return nil
	}, 0, 1)

	sched.RunAdmission(time.Now())
	a.Equal(1, startedCount)
	a.Equal(common.EDestinationState.Processing(), dest.State)

	sched.RunAdmission(time.Now())
	a.Equal(1, startedCount, "printer already at its per-printer cap")
}

func TestFinishJobFreesSlotAndMarksIdle(t *testing.T) {
	a := assert.New(t)

	reg := registry.NewRegistry(time.Hour, nil)
	dest := newTestPrinter(reg, "p1")
	store := jobstore.NewStore(100)
	j := jobstore.New(1, "p1", "alice", "doc", 50)
	store.Add(j)

	sched := NewScheduler(store, reg, func(j *jobstore.Job, d *registry.Destination) error { return nil }, 0, 0)
	sched.RunAdmission(time.Now())
	a.Equal(common.EJobState.Processing(), j.GetState())

	sched.FinishJob(j, dest, common.EJobState.Completed())
	a.Equal(common.EJobState.Completed(), j.GetState())
	a.Equal(common.EDestinationState.Idle(), dest.State)
}

func TestCancelAllForMarksNonTerminalJobsCancelled(t *testing.T) {
	a := assert.New(t)

	reg := registry.NewRegistry(time.Hour, nil)
	newTestPrinter(reg, "p1")
	store := jobstore.NewStore(100)
	j1 := jobstore.New(1, "p1", "alice", "d1", 50)
	j2 := jobstore.New(2, "p1", "alice", "d2", 50)
	j2.SetState(common.EJobState.Completed())
	store.Add(j1)
	store.Add(j2)

	sched := NewScheduler(store, reg, nil, 0, 0)
	sched.CancelAllFor("p1")

	a.Equal(common.EJobState.Cancelled(), j1.GetState())
	a.Equal(common.EJobState.Completed(), j2.GetState())
}

func TestResolveAbsoluteHoldUntilRollsToTomorrowIfPast(t *testing.T) {
	a := assert.New(t)
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	future := ResolveAbsoluteHoldUntil(now, 14, 0, 0)
	a.Equal(now.Year(), future.Year())
	a.Equal(now.Day(), future.Day())

	past := ResolveAbsoluteHoldUntil(now, 6, 0, 0)
	a.Equal(now.AddDate(0, 0, 1).Day(), past.Day())
}

func TestResolveHoldUntilWeekend(t *testing.T) {
	a := assert.New(t)
	monday := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	a.Equal(time.Monday, monday.Weekday())

	result, err := ResolveHoldUntil(common.EHoldUntil.Weekend(), monday)
	a.NoError(err)
	a.Equal(time.Saturday, result.Weekday())
}
