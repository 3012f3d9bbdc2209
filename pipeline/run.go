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

package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/procmgr"
)

// Backend describes the final stage of a chain, the one that actually
// talks to the destination's device URI.
type Backend struct {
	Program string
	Argv    []string
}

// Run is a started pipeline: the filter chain plus the backend, wired with
// pipes, its back-channel and side-channel, and the status reader goroutine
// that classifies lines per spec §4.5.
type Run struct {
	Job      common.JobID
	procs    []*os.Process
	spool    *Spool
	graceful time.Duration

	mu   sync.Mutex
	done bool
}

// Start spawns stages in sequence, piping stdout of stage N into stdin of
// stage N+1, and finally the backend; the backend alone receives the
// back-channel (fd 3) and side-channel (fd 4) spec §4.5 calls for. The
// first stage's stdin is jobFile; the backend's stdout/stderr both feed the
// shared status pipe, read by a goroutine that classifies each line via
// common.StatusTag and forwards it to b.statusSink.
func (b *Builder) Start(ctx context.Context, job common.JobID, jobFile *os.File, env Env, stages []Stage, backend Backend, graceful time.Duration) (*Run, error) {
	if b.limiter != nil {
		if err := b.limiter.Acquire(ctx, false); err != nil {
			return nil, err
		}
	}

	spool := &Spool{}
	run := &Run{Job: job, spool: spool, graceful: graceful}

	statusRead, statusWrite, err := os.Pipe()
	if err != nil {
		b.release()
		return nil, err
	}
	spool.track(statusWrite)

	backRead, backWrite, err := os.Pipe()
	if err != nil {
		b.release()
		return nil, err
	}
	spool.track(backRead)
	spool.track(backWrite)

	sideRead, sideWrite, err := os.Pipe()
	if err != nil {
		b.release()
		return nil, err
	}
	spool.track(sideRead)
	spool.track(sideWrite)

	environ := env.ToEnviron(os.Environ())

	stdin := jobFile
	for i, stage := range stages {
		var stdout *os.File
		var pipeReader *os.File
		if i < len(stages)-1 || backend.Program != "" {
			pipeReader, stdout, err = os.Pipe()
			if err != nil {
				b.release()
				return nil, err
			}
			spool.track(pipeReader)
			spool.track(stdout)
		} else {
			stdout = statusWrite
		}

		proc, err := b.procs.Spawn(procmgr.SpawnRequest{
			Job:      job,
			Name:     stage.Program,
			Path:     stage.Program,
			Argv:     stage.Argv,
			Env:      environ,
			Redirect: procmgr.Redirections{Stdin: stdin, Stdout: stdout, Stderr: statusWrite},
		})
		if err != nil {
			b.release()
			return nil, fmt.Errorf("spawning filter %s: %w", stage.Program, err)
		}
		run.procs = append(run.procs, proc)
		stdin = pipeReader
	}

	if backend.Program != "" {
		proc, err := b.procs.Spawn(procmgr.SpawnRequest{
			Job:      job,
			Name:     backend.Program,
			Path:     backend.Program,
			Argv:     backend.Argv,
			Env:      environ,
			Redirect: procmgr.Redirections{Stdin: stdin, Stdout: statusWrite, Stderr: statusWrite, Back: backRead, Side: sideRead},
		})
		if err != nil {
			b.release()
			return nil, fmt.Errorf("spawning backend %s: %w", backend.Program, err)
		}
		run.procs = append(run.procs, proc)
	}

	go b.readStatus(job, statusRead)

	return run, nil
}

func (b *Builder) release() {
	if b.limiter != nil {
		b.limiter.Release()
	}
}

// readStatus classifies each line written to the shared status pipe by its
// level-prefix tag (spec §4.5's "Status parsing") and forwards it.
func (b *Builder) readStatus(job common.JobID, r *os.File) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		tag, text := classify(line)
		if b.statusSink != nil {
			b.statusSink.OnStatusLine(job, 0, tag, text)
		}
	}
}

// classify splits a status line of the form "TAG: rest of line" into its
// common.StatusTag and remaining text; lines with no recognized tag are
// reported as EStatusTag.None() so callers can route them to the error log
// verbatim.
func classify(line string) (common.StatusTag, string) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return common.EStatusTag.None(), line
	}
	var tag common.StatusTag
	if err := tag.Parse(strings.TrimSpace(parts[0])); err != nil {
		return common.EStatusTag.None(), line
	}
	return tag, strings.TrimSpace(parts[1])
}

// Terminate sends SIGTERM to every child's process group, then SIGKILL to
// any still alive after the grace window, per spec §4.5's termination rule.
func (r *Run) Terminate(mgr *procmgr.Manager) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	r.mu.Unlock()

	for _, p := range r.procs {
		_ = mgr.SignalGroup(p.Pid, syscall.SIGTERM)
	}
	if r.graceful <= 0 {
		return
	}
	time.AfterFunc(r.graceful, func() {
		for _, p := range r.procs {
			_ = mgr.SignalGroup(p.Pid, syscall.SIGKILL)
		}
	})
}

// Close releases every pipe fd this run opened; call it after all children
// have been reaped.
func (r *Run) Close() {
	r.spool.Close()
}

// Processes returns the set of spawned child processes, for the caller to
// hand to a procmgr.Reaper.
func (r *Run) Processes() []*os.Process {
	return r.procs
}
