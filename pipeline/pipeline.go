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

// Package pipeline composes the chain of converter processes and backend
// that carries a job's first file to its destination's device, per spec
// §4.5.
package pipeline

import (
	"fmt"
	"os"

	"github.com/inkwell/printsched/backpressure"
	"github.com/inkwell/printsched/procmgr"
	"github.com/inkwell/printsched/schederr"

	"github.com/inkwell/printsched/common"
)

// Stage is one (program, cost) pair the MIME/converter collaborator
// returns for a source-type → destination-type conversion.
type Stage struct {
	Program string
	Argv    []string
	Cost    int
}

// Converter is the "external MIME/converter collaborator" spec §4.5
// delegates filter chain selection to.
type Converter interface {
	// Chain returns an ordered list of stages converting sourceType to
	// destType, or an error if no such chain exists.
	Chain(sourceType, destType string) ([]Stage, error)
}

// Env is the set of job/destination values spec §4.5 says must propagate
// to every child's environment.
type Env struct {
	Language    string
	Charset     string
	ContentType string
	DeviceURI   string
	JobID       common.JobID
	User        string
	Title       string
	Copies      int
	Options     string
}

func (e Env) ToEnviron(base []string) []string {
	return append(append([]string{}, base...),
		fmt.Sprintf("LANG=%s", e.Language),
		fmt.Sprintf("CHARSET=%s", e.Charset),
		fmt.Sprintf("CONTENT_TYPE=%s", e.ContentType),
		fmt.Sprintf("DEVICE_URI=%s", e.DeviceURI),
		fmt.Sprintf("PRINTSCHED_JOB_ID=%s", e.JobID.String()),
		fmt.Sprintf("PRINTSCHED_USER=%s", e.User),
		fmt.Sprintf("PRINTSCHED_TITLE=%s", e.Title),
		fmt.Sprintf("PRINTSCHED_COPIES=%d", e.Copies),
		fmt.Sprintf("PRINTSCHED_OPTIONS=%s", e.Options),
	)
}

// Builder wires stages and a backend together with pipes and spawns them
// through a procmgr.Manager, subject to a backpressure.Limiter that bounds
// how many pipelines run at once; FilterLimit itself is the summed-cost cap
// Plan enforces through filterCostLimit.
type Builder struct {
	converter Converter
	procs     *procmgr.Manager
	limiter   *backpressure.Limiter
	filterCostLimit int
	statusSink StatusSink
}

// StatusSink receives classified status-pipe lines (spec §4.5's "Status
// parsing"). Implemented by the dispatcher/registry glue at the top-level
// wiring so this package doesn't need to know about destinations or jobs.
type StatusSink interface {
	OnStatusLine(job common.JobID, pid int, tag common.StatusTag, text string)
}

func NewBuilder(converter Converter, procs *procmgr.Manager, limiter *backpressure.Limiter, filterCostLimit int, sink StatusSink) *Builder {
	return &Builder{
		converter:       converter,
		procs:           procs,
		limiter:         limiter,
		filterCostLimit: filterCostLimit,
		statusSink:      sink,
	}
}

// Plan resolves the filter chain for a job's first file against a
// destination's native type, enforcing FilterLimit (spec §4.5's "Total
// pipeline cost is compared against a configured FilterLimit; if over, the
// job is deferred").
func (b *Builder) Plan(sourceType, destType string) ([]Stage, error) {
	stages, err := b.converter.Chain(sourceType, destType)
	if err != nil {
		return nil, schederr.Wrap(err, common.EErrorKind.DocumentFormatNotSupported(), "no conversion path available")
	}

	total := 0
	for _, s := range stages {
		total += s.Cost
	}
	if b.filterCostLimit > 0 && total > b.filterCostLimit {
		return nil, schederr.NotPossible("pipeline cost exceeds the configured filter limit; job deferred")
	}
	return stages, nil
}

// Spool is the set of open files a running pipeline holds; Close releases
// them all, which is safe to call multiple times.
type Spool struct {
	opened []*os.File
}

func (s *Spool) track(f *os.File) *os.File {
	s.opened = append(s.opened, f)
	return f
}

func (s *Spool) Close() {
	for _, f := range s.opened {
		_ = f.Close()
	}
	s.opened = nil
}
