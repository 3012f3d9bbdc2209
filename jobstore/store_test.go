package jobstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
)

func TestListOrdersByID(t *testing.T) {
	a := assert.New(t)
	s := NewStore(10)

	s.Add(New(3, "p1", "alice", "doc", 50))
	s.Add(New(1, "p1", "alice", "doc", 50))
	s.Add(New(2, "p2", "bob", "doc", 50))

	all := s.List("")
	a.Len(all, 3)
	a.Equal(common.JobID(1), all[0].ID)
	a.Equal(common.JobID(2), all[1].ID)
	a.Equal(common.JobID(3), all[2].ID)

	p1Only := s.List("p1")
	a.Len(p1Only, 2)
}

func TestMarkTerminalEvictsAndUnlinksSpoolFiles(t *testing.T) {
	a := assert.New(t)

	tmp := t.TempDir()
	spoolPath := filepath.Join(tmp, "d1.spool")
	a.NoError(os.WriteFile(spoolPath, []byte("data"), 0644))

	s := NewStore(1) // capacity 1: the second terminal job evicts the first
	j1 := New(1, "p1", "alice", "doc", 50)
	j1.Files = []JobFile{{Path: spoolPath}}
	j1.SetState(common.EJobState.Completed())
	s.Add(j1)

	j2 := New(2, "p1", "alice", "doc", 50)
	j2.SetState(common.EJobState.Completed())
	s.Add(j2)

	s.MarkTerminal(j1)
	s.MarkTerminal(j2) // evicts j1 since capacity is 1

	_, err := os.Stat(spoolPath)
	a.True(os.IsNotExist(err))

	_, ok := s.Get(1)
	a.False(ok)
}

func TestRemoveNowDeletesImmediately(t *testing.T) {
	a := assert.New(t)
	tmp := t.TempDir()
	spoolPath := filepath.Join(tmp, "d1.spool")
	a.NoError(os.WriteFile(spoolPath, []byte("data"), 0644))

	s := NewStore(10)
	j := New(1, "p1", "alice", "doc", 50)
	j.Files = []JobFile{{Path: spoolPath}}
	s.Add(j)

	s.RemoveNow(1)

	_, ok := s.Get(1)
	a.False(ok)
	_, err := os.Stat(spoolPath)
	a.True(os.IsNotExist(err))
}
