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

// Package procmgr spawns filter and backend children with a sandboxed
// identity, tracks them by pid, and reaps them exactly once (spec §4.6).
package procmgr

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/inkwell/printsched/common"
)

// Redirections supplies the file descriptors a spawned child inherits:
// stdin/stdout/stderr as usual, plus the back-channel (fd 3, device→filter
// status) and side-channel (fd 4, control) spec §4.5 requires for the
// backend stage of a pipeline.
type Redirections struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Back   *os.File // nil unless this child is the backend
	Side   *os.File // nil unless this child is the backend
}

// SpawnRequest is spec §4.6's "Spawn contract".
type SpawnRequest struct {
	Job         common.JobID
	Name        string // program name, for the pid table and logging
	Path        string
	Argv        []string
	Env         []string
	Redirect    Redirections
	RunAsRoot   bool
	Uid, Gid    int
	Nice        int
}

// record is what the pid table stores per spawned child.
type record struct {
	job  common.JobID
	name string
}

// Manager owns the pid table; each child is reaped by a blocking Wait call
// on it (see Reaper.ReapAll).
type Manager struct {
	mu      sync.Mutex
	records map[int]record

	logger common.ILogger
}

func NewManager(logger common.ILogger) *Manager {
	if logger == nil {
		logger = common.NullLogger{}
	}
	return &Manager{
		records: make(map[int]record),
		logger:  logger,
	}
}

// Spawn places the child in its own process group, drops privileges unless
// RunAsRoot, sets its nice level, execs it, and inserts a pid→(job, name)
// record before returning (spec §4.6).
func (m *Manager) Spawn(req SpawnRequest) (*os.Process, error) {
	cmd := exec.Command(req.Path)
	if len(req.Argv) > 0 {
		cmd.Args = req.Argv // Argv is the child's full argv, argv[0] included
	}
	cmd.Env = req.Env
	cmd.Stdin = req.Redirect.Stdin
	cmd.Stdout = req.Redirect.Stdout
	cmd.Stderr = req.Redirect.Stderr

	extraFiles := []*os.File{}
	if req.Redirect.Back != nil {
		extraFiles = append(extraFiles, req.Redirect.Back)
	}
	if req.Redirect.Side != nil {
		extraFiles = append(extraFiles, req.Redirect.Side)
	}
	cmd.ExtraFiles = extraFiles

	sys := &syscall.SysProcAttr{Setpgid: true}
	if !req.RunAsRoot {
		sys.Credential = &syscall.Credential{Uid: uint32(req.Uid), Gid: uint32(req.Gid)}
	}
	cmd.SysProcAttr = sys

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	if req.Nice != 0 {
		_ = unix.Setpriority(unix.PRIO_PROCESS, cmd.Process.Pid, req.Nice)
	}

	m.mu.Lock()
	m.records[cmd.Process.Pid] = record{job: req.Job, name: req.Name}
	m.mu.Unlock()

	return cmd.Process, nil
}

// SignalGroup sends sig to pid's entire process group, per spec §4.5's
// termination rule (SIGTERM first, SIGKILL after a grace window).
func (m *Manager) SignalGroup(pid int, sig syscall.Signal) error {
	return unix.Kill(-pid, sig)
}

// ReapResult is what Wait reports once a child exits.
type ReapResult struct {
	Job       common.JobID
	Name      string
	Pid       int
	ExitCode  int
	Signaled  bool
	Signal    syscall.Signal
}

// Wait blocks for pid to exit (typically called from a goroutine per
// pending child; see Reaper.ReapAll, which fans these calls out). It
// removes the pid from the table exactly once.
func (m *Manager) Wait(ctx context.Context, proc *os.Process) (ReapResult, error) {
	state, err := proc.Wait()
	if err != nil {
		return ReapResult{}, err
	}

	m.mu.Lock()
	rec, ok := m.records[proc.Pid]
	delete(m.records, proc.Pid)
	m.mu.Unlock()

	if !ok {
		rec = record{name: "unknown"}
	}

	result := ReapResult{Job: rec.job, Name: rec.name, Pid: proc.Pid}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			result.Signaled = true
			result.Signal = ws.Signal()
		} else {
			result.ExitCode = ws.ExitStatus()
		}
	}
	return result, nil
}

// Lookup reports the (job, name) a still-tracked pid belongs to.
func (m *Manager) Lookup(pid int) (job common.JobID, name string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[pid]
	return rec.job, rec.name, ok
}

// Tracked reports how many children are currently tracked.
func (m *Manager) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
