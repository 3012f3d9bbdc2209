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

// Package daemon assembles every subsystem package into the single running
// scheduler process spec §9's design note calls for: one Scheduler value,
// one Registry value, one Store value, wired together here rather than
// reached through package-level globals.
package daemon

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/inkwell/printsched/access"
	"github.com/inkwell/printsched/backpressure"
	"github.com/inkwell/printsched/banner"
	"github.com/inkwell/printsched/browse"
	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/dispatch"
	"github.com/inkwell/printsched/eventloop"
	"github.com/inkwell/printsched/jobsched"
	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/pipeline"
	"github.com/inkwell/printsched/procmgr"
	"github.com/inkwell/printsched/registry"
	"github.com/inkwell/printsched/schederr"
)

// Config is the already-parsed set of directives the sibling config-file
// component (spec §6's cupsd.conf/cups-files.conf) hands the core; this
// package never reads a config file itself.
type Config struct {
	SpoolDir          string
	BannerDir         string
	BannerMimeType    string
	AdminGroup        string
	MaxJobsPerUser    int
	MaxJobsPerPrinter int
	FilterCostLimit   int
	FilterRateLimit   int // concurrent filter/backend processes, 0 = unlimited
	PipeByteRate      int // 0 = unlimited
	RetainedJobs      int
	BrowseTimeout     time.Duration
	HighCPUPercent    float64
	HighMemPercent    float64

	// ConfirmDestructive, when true, makes cancel-job, purge-jobs and
	// delete-printer ask common.GetLifecycleMgr() before proceeding.
	ConfirmDestructive bool

	Rules      []*access.Rule
	Credential access.CredentialChecker
}

// Daemon is every subsystem value wired together, plus the event loop that
// drives them. Nothing here is a package-level singleton; a process that
// wanted two independent schedulers (tests do) can build two Daemons.
type Daemon struct {
	Config    Config
	Registry  *registry.Registry
	Jobs      *jobstore.Store
	Scheduler *jobsched.Scheduler
	Access    *access.Engine
	Procs     *procmgr.Manager
	Reaper    *procmgr.Reaper
	Limiter   *backpressure.Limiter
	Pipeline  *pipeline.Builder
	Banners   *banner.Assembler
	Browse    *browse.Advertiser
	Dispatch  *dispatch.Dispatcher
	Loop      *eventloop.Loop
	Pressure  *eventloop.ResourcePressure

	logger common.ILogger
}

// New wires every subsystem in dependency order: job store and registry
// first (they have no dependencies on each other beyond the callback
// Registry.Delete uses to cancel a destination's jobs), then the process
// manager, reaper and limiter, the access engine, the browse advertiser,
// the event loop and its pressure monitor, the optional banner assembler
// and the pipeline builder the scheduler's StartFunc will call, then the
// scheduler that sits on top of them, and the dispatcher last.
func New(cfg Config, converter pipeline.Converter, logger common.ILogger) *Daemon {
	if logger == nil {
		logger = common.NullLogger{}
	}

	d := &Daemon{Config: cfg, logger: logger}

	d.Jobs = jobstore.NewStore(cfg.RetainedJobs)

	// Registry.Delete's CancelJobsFunc is bound before the Scheduler it
	// forwards to exists; the closure reads d.Scheduler at call time, by
	// which point New has finished, rather than at construction time.
	d.Registry = registry.NewRegistry(cfg.BrowseTimeout, func(destination string) {
		if d.Scheduler != nil {
			d.Scheduler.CancelAllFor(destination)
		}
	})

	d.Procs = procmgr.NewManager(logger)
	d.Reaper = procmgr.NewReaper(d.Procs)
	d.Limiter = backpressure.NewLimiter(cfg.FilterRateLimit, cfg.PipeByteRate)

	d.Access = access.NewEngine(cfg.Credential)
	d.Access.SetRules(cfg.Rules)

	d.Browse = browse.NewAdvertiser(d.Registry)

	d.Pressure = eventloop.NewResourcePressure(cfg.HighCPUPercent, cfg.HighMemPercent)
	d.Loop = eventloop.New()
	d.Loop.Pressure = d.Pressure
	d.Loop.OnReap = d.onReap

	if cfg.BannerDir != "" {
		if idx, err := banner.NewIndex(cfg.BannerDir, cfg.BannerMimeType); err == nil {
			d.Banners = banner.NewAssembler(idx, cfg.SpoolDir)
		}
	}

	d.Pipeline = pipeline.NewBuilder(converter, d.Procs, d.Limiter, cfg.FilterCostLimit, d)
	d.Scheduler = jobsched.NewScheduler(d.Jobs, d.Registry, d.startFunc, cfg.MaxJobsPerUser, cfg.MaxJobsPerPrinter)

	d.Dispatch = dispatch.NewDispatcher(d.Registry, d.Jobs, d.Scheduler, d.Access)
	d.Dispatch.AdminGroup = cfg.AdminGroup
	d.Dispatch.ConfirmDestructive = cfg.ConfirmDestructive
	d.Dispatch.Banners = d.Banners

	return d
}

// terminationGrace is the interval Run.Terminate waits after SIGTERM
// before escalating to SIGKILL (spec §4.5's termination rule).
const terminationGrace = 5 * time.Second

// startFunc is the jobsched.StartFunc wired to the filter pipeline: it
// plans the chain for the job's first file against the destination's
// native raster type, opens the spool file, resolves the backend for
// dest.DeviceURI, and spawns the chain. It returns an error (leaving the
// job pending for the next admission pass) if the plan is rejected for
// being over FilterLimit, or if spawning fails outright; once spawned, the
// job's outcome is decided asynchronously by reapJob.
func (d *Daemon) startFunc(job *jobstore.Job, dest *registry.Destination) error {
	sourcePath, sourceType := job.FirstNonBannerFile()
	if sourcePath == "" {
		return schederr.NotPossible("job has no spooled document")
	}

	stages, err := d.Pipeline.Plan(sourceType, "application/vnd.cups-raster")
	if err != nil {
		return err
	}

	jobFile, err := os.Open(sourcePath)
	if err != nil {
		return schederr.Wrap(err, common.EErrorKind.Internal(), "opening job spool file")
	}

	env := pipeline.Env{
		ContentType: sourceType,
		DeviceURI:   dest.DeviceURI,
		JobID:       job.ID,
		User:        job.Owner,
		Title:       job.Title,
		Copies:      1,
	}

	run, err := d.Pipeline.Start(context.Background(), job.ID, jobFile, env, stages, backendFor(dest.DeviceURI, job), terminationGrace)
	if err != nil {
		jobFile.Close()
		return schederr.Wrap(err, common.EErrorKind.Internal(), "starting filter pipeline")
	}

	go d.reapJob(job, dest, run, jobFile)
	return nil
}

// backendFor derives the pipeline's terminal stage from a destination's
// device URI the way CUPS backends are named and invoked: the URI scheme
// is the backend's program name (e.g. "socket", "usb", "file"), and it
// receives the job-id/user/title/copies/options argv a CUPS backend
// expects, with the spooled data arriving on stdin.
func backendFor(deviceURI string, job *jobstore.Job) pipeline.Backend {
	scheme, _, _ := strings.Cut(deviceURI, ":")
	return pipeline.Backend{
		Program: scheme,
		Argv:    []string{deviceURI, job.ID.String(), job.Owner, job.Title, "1", ""},
	}
}

// reapJob waits for every process in run to exit, then reports the job's
// terminal state to the scheduler — completed unless some stage exited
// nonzero or by signal, in which case the job is aborted per spec §4.4's
// state table. Runs off the event loop goroutine so a slow backend never
// blocks admission of other jobs.
func (d *Daemon) reapJob(job *jobstore.Job, dest *registry.Destination, run *pipeline.Run, jobFile *os.File) {
	outcome := common.EJobState.Completed()
	err := d.Reaper.ReapAll(context.Background(), run.Processes(), func(res procmgr.ReapResult) {
		if res.Signaled || res.ExitCode != 0 {
			outcome = common.EJobState.Aborted()
		}
	})
	if err != nil {
		outcome = common.EJobState.Aborted()
	}

	run.Close()
	jobFile.Close()
	d.Limiter.Release()
	d.Scheduler.FinishJob(job, dest, outcome)
}

// OnStatusLine implements pipeline.StatusSink: PAGE increments the job's
// SheetsCompleted count and is not logged; every other tag, STATE/ATTR/PPD
// included, goes to the daemon logger at the tag's log level.
func (d *Daemon) OnStatusLine(job common.JobID, pid int, tag common.StatusTag, text string) {
	if tag == common.EStatusTag.Page() {
		if j, ok := d.Jobs.Get(job); ok {
			j.SheetsCompleted++
		}
		return
	}
	d.logger.Log(tag.LogLevel(), text)
}

// onReap runs once per loop iteration in which SIGCHLD arrived. A job's
// own filter/backend chain is reaped by reapJob's blocking Wait() calls in
// a goroutine of its own, not from here — a generic wait4(-1) sweep here
// would race reapJob for the same child's exit status, since a pid can
// only be reaped once. Instead onReap treats the signal as a cue that some
// destination may have just freed up, and runs an admission pass right
// away rather than waiting for the next timer tick.
func (d *Daemon) onReap() {
	d.RunAdmission()
}

// RunAdmission is scheduled on the event loop's timer so every destination
// gets an admission pass after any state change that could unblock one.
func (d *Daemon) RunAdmission() {
	d.Scheduler.RunAdmission(time.Now())
}
