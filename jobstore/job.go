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

// Package jobstore holds Job records and their file lists; jobsched layers
// the admission policy and state machine on top of it.
package jobstore

import (
	"sync"
	"time"

	"github.com/inkwell/printsched/common"
)

// JobFile is one spooled or banner file belonging to a job, in print order.
type JobFile struct {
	Path     string
	MimeType string
	IsBanner bool
}

// Job is spec §3's Job record.
type Job struct {
	mu sync.Mutex

	ID          common.JobID
	Destination string
	Owner       string
	Title       string
	Priority    int // 1..100, higher first
	CreatedAt   time.Time

	State        common.JobState
	HoldUntil    common.HoldUntilKeyword
	HoldUntilAt  time.Time // resolved absolute instant, valid when HoldUntil != None/NoHold
	AwaitingDocs bool      // true between create-job and last-document=true

	Files []JobFile

	Attributes map[string]any

	SheetsCompleted int
	Logger          common.ILoggerResetable
}

func New(id common.JobID, destination, owner, title string, priority int) *Job {
	return &Job{
		ID:          id,
		Destination: destination,
		Owner:       owner,
		Title:       title,
		Priority:    priority,
		CreatedAt:   time.Now(),
		State:       common.EJobState.Pending(),
		Attributes:  make(map[string]any),
	}
}

func (j *Job) AppendFile(f JobFile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Files = append(j.Files, f)
}

// PrependFile inserts f (a start banner) at the front of the file list.
func (j *Job) PrependFile(f JobFile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Files = append([]JobFile{f}, j.Files...)
}

// FirstNonBannerFile returns the path and MIME type of the first
// non-banner file in the job's file list, or ("", "") if none has been
// spooled yet.
func (j *Job) FirstNonBannerFile() (path, mimeType string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, f := range j.Files {
		if !f.IsBanner {
			return f.Path, f.MimeType
		}
	}
	return "", ""
}

func (j *Job) SetState(s common.JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.State = s
}

func (j *Job) GetState() common.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.State
}

// SetAttribute applies spec §4.4's set-attributes sentinel semantics: a
// nil value deletes the attribute.
func (j *Job) SetAttribute(name string, value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if value == nil {
		delete(j.Attributes, name)
		return
	}
	j.Attributes[name] = value
}
