package common

import (
	"strconv"
	"sync/atomic"
)

// JobID identifies a Job. Spec §3 requires only that it be "a monotonically
// assigned positive integer"; unlike the teacher's JobID (a 128-bit UUID,
// because azcopy jobs are user-initiated and never need to be guessed or
// enumerated) a print job's id is dense and small, because clients list and
// poll jobs by id constantly (get-jobs, get-job-attributes).
type JobID uint64

func (j JobID) String() string {
	return strconv.FormatUint(uint64(j), 10)
}

func (j JobID) Valid() bool {
	return j != 0
}

// JobIDGenerator hands out the monotonically increasing sequence of job ids
// a scheduler needs across its lifetime. It is safe for concurrent use,
// though spec §5 only ever calls it from the event loop thread.
type JobIDGenerator struct {
	next uint64
}

// NewJobIDGenerator creates a generator that will hand out startAt+1 as its
// first id; pass the highest id found on disk at restart so ids never reuse
// across a restart.
func NewJobIDGenerator(startAt uint64) *JobIDGenerator {
	return &JobIDGenerator{next: startAt}
}

func (g *JobIDGenerator) Next() JobID {
	return JobID(atomic.AddUint64(&g.next, 1))
}
