package procmgr

import (
	"context"
	"os"
	"os/user"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
)

func currentUidGid(t *testing.T) (int, int) {
	t.Helper()
	u, err := user.Current()
	if err != nil {
		t.Skip("cannot resolve current user in this sandbox")
	}
	uid, _ := strconv.Atoi(u.Uid)
	gid, _ := strconv.Atoi(u.Gid)
	return uid, gid
}

func TestSpawnAndWaitReportsExitCode(t *testing.T) {
	a := assert.New(t)
	uid, gid := currentUidGid(t)

	mgr := NewManager(common.NullLogger{})
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	a.NoError(err)
	defer devNull.Close()

	proc, err := mgr.Spawn(SpawnRequest{
		Job:      42,
		Name:     "true",
		Path:     "/bin/true",
		Redirect: Redirections{Stdin: devNull, Stdout: devNull, Stderr: devNull},
		Uid:      uid,
		Gid:      gid,
	})
	a.NoError(err)

	_, _, ok := mgr.Lookup(proc.Pid)
	a.True(ok)

	result, err := mgr.Wait(context.Background(), proc)
	a.NoError(err)
	a.Equal(common.JobID(42), result.Job)
	a.Equal(0, result.ExitCode)
	a.False(result.Signaled)

	_, _, ok = mgr.Lookup(proc.Pid)
	a.False(ok)
}

func TestSpawnNonZeroExit(t *testing.T) {
	a := assert.New(t)
	uid, gid := currentUidGid(t)

	mgr := NewManager(common.NullLogger{})
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	a.NoError(err)
	defer devNull.Close()

	proc, err := mgr.Spawn(SpawnRequest{
		Job:      1,
		Name:     "false",
		Path:     "/bin/false",
		Redirect: Redirections{Stdin: devNull, Stdout: devNull, Stderr: devNull},
		Uid:      uid,
		Gid:      gid,
	})
	a.NoError(err)

	result, err := mgr.Wait(context.Background(), proc)
	a.NoError(err)
	a.NotEqual(0, result.ExitCode)
}

func TestReapAllDispatchesEachExit(t *testing.T) {
	a := assert.New(t)
	uid, gid := currentUidGid(t)

	mgr := NewManager(common.NullLogger{})
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	a.NoError(err)
	defer devNull.Close()

	var procs []*os.Process
	for i := 0; i < 3; i++ {
		proc, err := mgr.Spawn(SpawnRequest{
			Job:      common.JobID(i + 1),
			Name:     "true",
			Path:     "/bin/true",
			Redirect: Redirections{Stdin: devNull, Stdout: devNull, Stderr: devNull},
			Uid:      uid,
			Gid:      gid,
		})
		a.NoError(err)
		procs = append(procs, proc)
	}

	reaper := NewReaper(mgr)
	seen := make(chan common.JobID, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.NoError(reaper.ReapAll(ctx, procs, func(r ReapResult) {
		seen <- r.Job
	}))
	close(seen)

	count := 0
	for range seen {
		count++
	}
	a.Equal(3, count)
}
