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
	"github.com/inkwell/printsched/access"
	"github.com/inkwell/printsched/banner"
	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/jobsched"
	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/registry"
	"github.com/inkwell/printsched/schederr"
)

// Handler performs one operation after the dispatcher has validated the
// envelope and resolved the target destination/job. It returns the
// response's attribute groups, or an error classified by schederr.KindOf.
type Handler func(d *Dispatcher, req *Request) ([]AttributeGroup, error)

// privateOps need neither printer-uri nor job-uri (spec §4.7's "except for
// a small set of private operations").
var privateOps = map[common.OperationCode]bool{
	common.EOperation.GetDefault():  true,
	common.EOperation.GetPrinters(): true,
	common.EOperation.GetClasses():  true,
	common.EOperation.GetDevices():  true,
	common.EOperation.GetPPDs():     true,
	common.EOperation.AddPrinter():  true,
	common.EOperation.AddClass():    true,
}

// Dispatcher wires the operation table to the subsystems a handler may
// touch, and enforces the envelope checks of spec §4.7 before any handler
// runs.
type Dispatcher struct {
	Registry  *registry.Registry
	Jobs      *jobstore.Store
	Scheduler *jobsched.Scheduler
	Access    *access.Engine
	Jobs2Dest func(job *jobstore.Job) (*registry.Destination, bool) // resolves a job's current destination

	// Banners renders the start/end banner sheets spec §4.4 describes;
	// nil when the daemon was configured without a banner directory.
	Banners *banner.Assembler

	// AdminGroup is the system group whose members pass the "member of
	// admin group" half of spec §4.7's owner/admin/root sub-check.
	AdminGroup string

	// ConfirmDestructive routes cancel-job, purge-jobs and delete-printer
	// through common.GetLifecycleMgr().Prompt before they take effect. Off
	// by default; cmd's "run" command turns it on only when running in the
	// foreground with a terminal attached to answer it.
	ConfirmDestructive bool

	jobIDs   common.JobIDGenerator
	handlers map[common.OperationCode]Handler
}

func NewDispatcher(reg *registry.Registry, jobs *jobstore.Store, sched *jobsched.Scheduler, eng *access.Engine) *Dispatcher {
	d := &Dispatcher{Registry: reg, Jobs: jobs, Scheduler: sched, Access: eng, AdminGroup: "lpadmin"}
	d.Jobs2Dest = func(job *jobstore.Job) (*registry.Destination, bool) {
		return reg.Find(job.Destination)
	}
	d.handlers = defaultHandlerTable()
	return d
}

// Dispatch validates the envelope, runs the operation's handler, and
// always returns a fully-populated Response — handler errors become a
// Response whose Status reflects the error's schederr.KindOf, per spec
// §7's "handlers return a kind; the dispatcher wrapper fills the response".
func (d *Dispatcher) Dispatch(req *Request) *Response {
	resp := &Response{VersionMajor: req.VersionMajor, VersionMinor: req.VersionMinor, RequestID: req.RequestID}

	if err := d.validateEnvelope(req); err != nil {
		resp.Status = schederr.KindOf(err)
		return resp
	}

	authReq := access.Request{
		Path:     resourcePath(req),
		Method:   0,
		Peer:     req.Peer,
		TLS:      req.TLS,
		Username: req.Username,
		Secret:   req.Secret,
	}
	if d.Access != nil {
		if err := d.Access.Authorize(authReq); err != nil {
			resp.Status = schederr.KindOf(err)
			return resp
		}
	}

	handler, ok := d.handlers[req.Operation]
	if !ok {
		resp.Status = common.EErrorKind.BadRequest()
		return resp
	}

	groups, err := handler(d, req)
	if err != nil {
		resp.Status = schederr.KindOf(err)
		return resp
	}
	resp.Status = common.EErrorKind.None()
	resp.Groups = groups
	return resp
}

func resourcePath(req *Request) string {
	if req.PrinterURI != "" {
		return req.PrinterURI
	}
	if req.JobURI != "" {
		return req.JobURI
	}
	return "/" // private operations carry no resource URI
}

// validateEnvelope implements spec §4.7's request-shape checks: required
// charset/natural-language attributes, protocol major version 1, a
// resource URI unless the operation is private, and group order (groups
// must already arrive ordered; here we merely reject a group tag that
// reappears after a different tag has come between, which is as much as
// the core can verify without a schema of valid tags).
func (d *Dispatcher) validateEnvelope(req *Request) error {
	if req.VersionMajor != 1 {
		return schederr.BadRequest("unsupported protocol major version")
	}
	if req.AttrString("attributes-charset") == "" {
		return schederr.BadRequest("missing attributes-charset")
	}
	if req.AttrString("attributes-natural-language") == "" {
		return schederr.BadRequest("missing attributes-natural-language")
	}
	if !privateOps[req.Operation] && req.PrinterURI == "" && req.JobURI == "" {
		return schederr.BadRequest("missing printer-uri or job-uri")
	}
	seen := make(map[string]bool)
	for i, g := range req.Groups {
		if seen[g.Tag] && req.Groups[i-1].Tag != g.Tag {
			return schederr.BadRequest("attribute groups out of order")
		}
		seen[g.Tag] = true
	}
	return nil
}

func defaultHandlerTable() map[common.OperationCode]Handler {
	return map[common.OperationCode]Handler{
		common.EOperation.PrintJob():             handlePrintJob,
		common.EOperation.ValidateJob():          handleValidateJob,
		common.EOperation.CreateJob():            handleCreateJob,
		common.EOperation.SendDocument():         handleSendDocument,
		common.EOperation.CancelJob():            handleCancelJob,
		common.EOperation.GetJobAttributes():     handleGetJobAttributes,
		common.EOperation.GetJobs():              handleGetJobs,
		common.EOperation.GetPrinterAttributes(): handleGetPrinterAttributes,
		common.EOperation.HoldJob():              handleHoldJob,
		common.EOperation.ReleaseJob():           handleReleaseJob,
		common.EOperation.RestartJob():           handleRestartJob,
		common.EOperation.PausePrinter():         handlePausePrinter,
		common.EOperation.ResumePrinter():        handleResumePrinter,
		common.EOperation.PurgeJobs():            handlePurgeJobs,
		common.EOperation.SetJobAttributes():     handleSetJobAttributes,
		common.EOperation.GetDefault():           handleGetDefault,
		common.EOperation.GetPrinters():          handleGetPrinters,
		common.EOperation.GetClasses():           handleGetClasses,
		common.EOperation.AddPrinter():           handleAddPrinter,
		common.EOperation.DeletePrinter():        handleDeletePrinter,
		common.EOperation.AddClass():             handleAddClass,
		common.EOperation.DeleteClass():          handleDeleteClass,
		common.EOperation.AcceptJobs():           handleAcceptJobs,
		common.EOperation.RejectJobs():           handleRejectJobs,
		common.EOperation.SetDefault():           handleSetDefault,
		common.EOperation.GetDevices():           handleGetDevices,
		common.EOperation.GetPPDs():              handleGetPPDs,
		common.EOperation.MoveJob():              handleMoveJob,
	}
}
