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

package dispatch

import (
	"fmt"
	"time"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/jobsched"
	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/registry"
	"github.com/inkwell/printsched/schederr"
)

// resolveDestination maps a request's printer-uri onto a registry entry.
func (d *Dispatcher) resolveDestination(req *Request) (*registry.Destination, error) {
	if req.PrinterURI == "" {
		return nil, schederr.BadRequest("operation requires a printer-uri")
	}
	dest, ok := d.Registry.FindByURISuffix(req.PrinterURI)
	if !ok {
		return nil, schederr.NotFound(fmt.Sprintf("no destination matches %q", req.PrinterURI))
	}
	return dest, nil
}

// resolveJob maps a request's job-uri or job-id attribute onto a stored job.
func (d *Dispatcher) resolveJob(req *Request) (*jobstore.Job, error) {
	id, ok := req.Attr("job-id")
	if !ok {
		return nil, schederr.BadRequest("operation requires a job-id")
	}
	jid, ok := id.(common.JobID)
	if !ok {
		if n, ok := id.(int); ok {
			jid = common.JobID(n)
		} else {
			return nil, schederr.BadRequest("job-id has the wrong type")
		}
	}
	job, ok := d.Jobs.Get(jid)
	if !ok {
		return nil, schederr.NotFound(fmt.Sprintf("no job %d", jid))
	}
	return job, nil
}

// confirmDestructive asks the configured JobUIHooks before an irreversible
// operation proceeds, when the dispatcher was built with confirmation
// enabled (cmd's "run" command turns this on only in foreground mode,
// where there's a terminal attached to answer it). Headless operation
// always answers yes, matching cupsd's own unattended behavior.
func (d *Dispatcher) confirmDestructive(promptType common.PromptType, target string) bool {
	if !d.ConfirmDestructive {
		return true
	}
	resp := common.GetLifecycleMgr().Prompt(
		fmt.Sprintf("%s %q?", promptType, target),
		common.PromptDetails{
			PromptType:      promptType,
			ResponseOptions: []common.ResponseOption{common.EResponseOption.Yes(), common.EResponseOption.No()},
			PromptTarget:    target,
		},
	)
	return resp == common.EResponseOption.Yes() || resp == common.EResponseOption.YesForAll()
}

// attachBanners prepends the destination's start banner and appends its
// end banner to job's file list, per spec §4.4's banner policy. A nil
// Banners (no -BannerDir configured) or an unset BannerStart/BannerEnd is
// a no-op; a template that fails to render is logged nowhere and simply
// skipped, since a missing banner should never block a print job.
func (d *Dispatcher) attachBanners(job *jobstore.Job, dest *registry.Destination) {
	if d.Banners == nil {
		return
	}
	if dest.BannerStart != "" && dest.BannerStart != "none" {
		if f, err := d.Banners.Render(job, dest.BannerStart); err == nil {
			job.PrependFile(f)
		}
	}
	if dest.BannerEnd != "" && dest.BannerEnd != "none" {
		if f, err := d.Banners.Render(job, dest.BannerEnd); err == nil {
			job.AppendFile(f)
		}
	}
}

// requireOwnerOrAdmin implements spec §4.7's "owner, member of admin
// group, or root" sub-check for operations on an existing job.
func (d *Dispatcher) requireOwnerOrAdmin(req *Request, owner string) error {
	if req.Username == owner || req.Username == "root" {
		return nil
	}
	if d.Access == nil {
		return schederr.Forbidden("only the job owner or root may perform this operation")
	}
	member, err := d.Access.CheckGroupMembership(req.Username, d.AdminGroup)
	if err != nil {
		return schederr.Wrap(err, common.EErrorKind.Internal(), "admin group check failed")
	}
	if !member {
		return schederr.Forbidden("only the job owner, an administrator, or root may perform this operation")
	}
	return nil
}

func destinationAttrGroup(d *registry.Destination) AttributeGroup {
	return AttributeGroup{Tag: "printer-attributes", Values: map[string]any{
		"printer-name":          d.Name,
		"printer-uri-supported": d.URI,
		"printer-state":         d.State.String(),
		"printer-state-message": d.StateMessage,
		"printer-is-accepting-jobs": d.AcceptingJobs,
		"printer-info":          d.Info,
		"printer-location":      d.Location,
	}}
}

func jobAttrGroup(j *jobstore.Job) AttributeGroup {
	return AttributeGroup{Tag: "job-attributes", Values: map[string]any{
		"job-id":                  j.ID,
		"job-name":                j.Title,
		"job-originating-user-name": j.Owner,
		"job-state":               j.GetState().String(),
		"job-printer-uri":         j.Destination,
		"job-priority":            j.Priority,
		"job-media-sheets-completed": j.SheetsCompleted,
	}}
}

func handlePrintJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !dest.AcceptingJobs {
		return nil, schederr.NotAccepting(fmt.Sprintf("destination %q is not accepting jobs", dest.Name))
	}

	priority := 50
	if p, ok := req.Attr("job-priority"); ok {
		if n, ok := p.(int); ok {
			priority = n
		}
	}

	job := jobstore.New(nextJobID(d), dest.Name, req.Username, req.AttrString("job-name"), priority)
	if path := req.AttrString("spool-path"); path != "" {
		job.AppendFile(jobstore.JobFile{Path: path, MimeType: req.AttrString("document-format")})
	}
	if hold := req.AttrString("job-hold-until"); hold != "" {
		var kw common.HoldUntilKeyword
		if err := kw.Parse(hold); err == nil {
			at, err := jobsched.ResolveHoldUntil(kw, time.Now())
			if err != nil {
				return nil, err
			}
			job.HoldUntil = kw
			job.HoldUntilAt = at
			if kw != common.EHoldUntil.NoHold() && kw != common.EHoldUntil.None() {
				job.SetState(common.EJobState.Held())
			}
		}
	}
	d.attachBanners(job, dest)
	d.Jobs.Add(job)
	return []AttributeGroup{jobAttrGroup(job)}, nil
}

// handleValidateJob runs the same checks as print-job but never creates a
// job or accepts document data (spec's "validate-job" has no side effect).
func handleValidateJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !dest.AcceptingJobs {
		return nil, schederr.NotAccepting(fmt.Sprintf("destination %q is not accepting jobs", dest.Name))
	}
	return nil, nil
}

// handleCreateJob starts a job awaiting its documents (spec's
// create-job/send-document pair); the job stays AwaitingDocs until a
// send-document with last-document=true arrives.
func handleCreateJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !dest.AcceptingJobs {
		return nil, schederr.NotAccepting(fmt.Sprintf("destination %q is not accepting jobs", dest.Name))
	}
	job := jobstore.New(nextJobID(d), dest.Name, req.Username, req.AttrString("job-name"), 50)
	job.AwaitingDocs = true
	d.Jobs.Add(job)
	return []AttributeGroup{jobAttrGroup(job)}, nil
}

// handleSendDocument appends one file to a job created by create-job and,
// on the last document, clears AwaitingDocs so the scheduler may admit it.
// The document body itself has already been spooled by the transport layer
// to the path given in "spool-path"; this handler only records it.
func handleSendDocument(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	if !job.AwaitingDocs {
		return nil, schederr.NotPossible("job is not awaiting documents")
	}

	path := req.AttrString("spool-path")
	mime := req.AttrString("document-format")
	if path != "" {
		job.AppendFile(jobstore.JobFile{Path: path, MimeType: mime})
	}

	if last, ok := req.Attr("last-document"); ok {
		if b, ok := last.(bool); ok && b {
			job.AwaitingDocs = false
			if dest, ok := d.Jobs2Dest(job); ok {
				d.attachBanners(job, dest)
			}
		}
	}
	return []AttributeGroup{jobAttrGroup(job)}, nil
}

func handleCancelJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	if job.GetState().IsTerminal() {
		return nil, schederr.NotPossible("job has already reached a terminal state")
	}
	if !d.confirmDestructive(common.EPromptType.CancelJob(), job.Title) {
		return nil, schederr.NotPossible("cancellation declined")
	}
	job.SetState(common.EJobState.Cancelled())
	d.Jobs.MarkTerminal(job)
	return nil, nil
}

func handleGetJobAttributes(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	return []AttributeGroup{jobAttrGroup(job)}, nil
}

func handleGetJobs(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	destName := ""
	if req.PrinterURI != "" {
		dest, err := d.resolveDestination(req)
		if err != nil {
			return nil, err
		}
		destName = dest.Name
	}
	var groups []AttributeGroup
	for _, j := range d.Jobs.List(destName) {
		if !j.GetState().IsActive() {
			continue
		}
		groups = append(groups, jobAttrGroup(j))
	}
	return groups, nil
}

func handleGetPrinterAttributes(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	attrs, _ := d.Registry.AttributesFor(dest.Name, buildAttributes)
	return []AttributeGroup{{Tag: "printer-attributes", Values: attrs}}, nil
}

func buildAttributes(d *registry.Destination) map[string]any {
	return destinationAttrGroup(d).Values
}

func handleHoldJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	if job.GetState().IsTerminal() {
		return nil, schederr.NotPossible("job has already reached a terminal state")
	}
	job.SetState(common.EJobState.Held())
	return nil, nil
}

func handleReleaseJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	if job.GetState() != common.EJobState.Held() {
		return nil, schederr.NotPossible("job is not held")
	}
	job.HoldUntil = common.EHoldUntil.NoHold()
	job.HoldUntilAt = time.Time{}
	job.SetState(common.EJobState.Pending())
	return nil, nil
}

func handleRestartJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	job.SheetsCompleted = 0
	job.SetState(common.EJobState.Pending())
	return nil, nil
}

func handlePausePrinter(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	dest.State = common.EDestinationState.Stopped()
	dest.StateMessage = req.AttrString("printer-state-message")
	return nil, nil
}

func handleResumePrinter(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	dest.State = common.EDestinationState.Idle()
	dest.StateMessage = ""
	return nil, nil
}

func handlePurgeJobs(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !d.confirmDestructive(common.EPromptType.PurgeJob(), dest.Name) {
		return nil, schederr.NotPossible("purge declined")
	}
	for _, j := range d.Jobs.List(dest.Name) {
		j.SetState(common.EJobState.Cancelled())
		d.Jobs.RemoveNow(j.ID)
	}
	return nil, nil
}

func handleSetJobAttributes(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	for _, g := range req.Groups {
		if g.Tag != "job-attributes" {
			continue
		}
		for name, value := range g.Values {
			job.SetAttribute(name, value)
		}
	}
	return nil, nil
}

func handleGetDefault(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, ok := d.Registry.Default()
	if !ok {
		return nil, schederr.NotFound("no default destination is configured")
	}
	return []AttributeGroup{destinationAttrGroup(dest)}, nil
}

func handleGetPrinters(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	var groups []AttributeGroup
	for _, dest := range d.Registry.List() {
		if dest.Kind.IsClass() {
			continue
		}
		groups = append(groups, destinationAttrGroup(dest))
	}
	return groups, nil
}

func handleGetClasses(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	var groups []AttributeGroup
	for _, dest := range d.Registry.List() {
		if !dest.Kind.IsClass() {
			continue
		}
		groups = append(groups, destinationAttrGroup(dest))
	}
	return groups, nil
}

func handleAddPrinter(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	name := req.AttrString("printer-name")
	if name == "" {
		return nil, schederr.BadRequest("add-printer requires a printer-name")
	}
	deviceURI := req.AttrString("device-uri")
	dest := d.Registry.AddPrinter(name, deviceURI, common.NewCapabilitySet())
	return []AttributeGroup{destinationAttrGroup(dest)}, nil
}

func handleDeletePrinter(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !d.confirmDestructive(common.EPromptType.DeleteDestination(), dest.Name) {
		return nil, schederr.NotPossible("deletion declined")
	}
	if err := d.Registry.Delete(dest.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleAddClass(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	name := req.AttrString("printer-name")
	if name == "" {
		return nil, schederr.BadRequest("add-class requires a printer-name")
	}
	var members []string
	if raw, ok := req.Attr("member-names"); ok {
		if ms, ok := raw.([]string); ok {
			members = ms
		}
	}
	dest, err := d.Registry.AddClass(name, members)
	if err != nil {
		return nil, err
	}
	return []AttributeGroup{destinationAttrGroup(dest)}, nil
}

// handleDeleteClass is handleDeletePrinter's class-only counterpart: same
// confirm-then-delete shape, but rejects a name that resolves to a printer
// rather than a class, so delete-class can't silently remove the wrong
// kind of destination.
func handleDeleteClass(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if !dest.Kind.IsClass() {
		return nil, schederr.BadRequest("delete-class: " + dest.Name + " is not a class")
	}
	if !d.confirmDestructive(common.EPromptType.DeleteDestination(), dest.Name) {
		return nil, schederr.NotPossible("deletion declined")
	}
	if err := d.Registry.Delete(dest.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleAcceptJobs(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	dest.AcceptingJobs = true
	return nil, nil
}

func handleRejectJobs(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	dest.AcceptingJobs = false
	dest.StateMessage = req.AttrString("printer-state-message")
	return nil, nil
}

func handleSetDefault(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	dest, err := d.resolveDestination(req)
	if err != nil {
		return nil, err
	}
	if err := d.Registry.SetDefault(dest.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleGetDevices and handleGetPPDs are private operations backed by a
// device/PPD catalog collaborator the top-level wiring owns; the core
// dispatcher merely authorizes and forwards, so the placeholder table
// returned here is filled in once that collaborator is wired.
func handleGetDevices(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	return nil, nil
}

func handleGetPPDs(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	return nil, nil
}

func handleMoveJob(d *Dispatcher, req *Request) ([]AttributeGroup, error) {
	job, err := d.resolveJob(req)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwnerOrAdmin(req, job.Owner); err != nil {
		return nil, err
	}
	newName := req.AttrString("job-printer-uri")
	dest, ok := d.Registry.FindByURISuffix(newName)
	if !ok {
		return nil, schederr.NotFound(fmt.Sprintf("no destination matches %q", newName))
	}
	d.Scheduler.MoveJob(job, dest.Name)
	return nil, nil
}

func nextJobID(d *Dispatcher) common.JobID {
	return d.jobIDs.Next()
}
