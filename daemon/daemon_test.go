package daemon

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/dispatch"
	"github.com/inkwell/printsched/pipeline"
)

type nullConverter struct{}

func (nullConverter) Chain(sourceType, destType string) ([]pipeline.Stage, error) {
	if sourceType == destType {
		return nil, nil
	}
	return []pipeline.Stage{{Program: "noop", Cost: 1}}, nil
}

func newTestDaemon() *Daemon {
	cfg := Config{
		SpoolDir:        "/tmp",
		FilterCostLimit: 1000,
		RetainedJobs:    100,
		BrowseTimeout:   time.Minute,
	}
	return New(cfg, nullConverter{}, common.NullLogger{})
}

func validPrintRequest(printerURI string) *dispatch.Request {
	return &dispatch.Request{
		VersionMajor: 1,
		VersionMinor: 1,
		Operation:    common.EOperation.PrintJob(),
		RequestID:    1,
		PrinterURI:   printerURI,
		Username:     "alice",
		Groups: []dispatch.AttributeGroup{{Tag: "operation-attributes", Values: map[string]any{
			"attributes-charset":          "utf-8",
			"attributes-natural-language": "en",
			"job-name":                    "report.pdf",
		}}},
	}
}

// spooledPrintRequest is validPrintRequest plus the spool-path/document-format
// pair handlePrintJob uses to record an already-received document (the real
// listener spools the document body before dispatching); document-format
// matches startFunc's hardcoded native raster type so nullConverter.Chain
// takes its identity path and no filter stage needs to exist on disk.
func spooledPrintRequest(printerURI, spoolPath string) *dispatch.Request {
	req := validPrintRequest(printerURI)
	req.Groups[0].Values["spool-path"] = spoolPath
	req.Groups[0].Values["document-format"] = "application/vnd.cups-raster"
	return req
}

func TestDaemonNewWiresAllSubsystems(t *testing.T) {
	a := assert.New(t)
	d := newTestDaemon()
	a.NotNil(d.Registry)
	a.NotNil(d.Jobs)
	a.NotNil(d.Scheduler)
	a.NotNil(d.Access)
	a.NotNil(d.Dispatch)
	a.NotNil(d.Loop)
	a.NotNil(d.Pipeline)
	a.Same(d.Scheduler, d.Dispatch.Scheduler)
}

func TestDaemonPrintJobThenAdmissionStartsPipeline(t *testing.T) {
	a := assert.New(t)
	d := newTestDaemon()

	spoolFile, err := os.CreateTemp("", "printsched-job-*")
	a.NoError(err)
	defer os.Remove(spoolFile.Name())
	spoolFile.Close()

	// "true" is backendFor's derived program name (the URI scheme), spawned
	// directly off $PATH by procmgr.Manager.Spawn the same way a real CUPS
	// backend would be exec'd; it exits 0 immediately, so the job reaps as
	// Completed without a real printer on the other end.
	d.Registry.AddPrinter("office", "true://sink", common.NewCapabilitySet())

	resp := d.Dispatch.Dispatch(spooledPrintRequest("office", spoolFile.Name()))
	a.Equal(common.EErrorKind.None(), resp.Status)
	a.Len(resp.Groups, 1)

	jobID, ok := resp.Groups[0].Values["job-id"].(common.JobID)
	a.True(ok)

	job, ok := d.Jobs.Get(jobID)
	a.True(ok)
	a.Equal(common.EJobState.Pending(), job.GetState())

	d.RunAdmission()

	a.Eventually(func() bool {
		return job.GetState() == common.EJobState.Completed()
	}, time.Second, 5*time.Millisecond, "job should reach Completed once reapJob observes the backend exit")
}

func TestDaemonRegistryDeleteCancelsQueuedJobsThroughScheduler(t *testing.T) {
	a := assert.New(t)
	d := newTestDaemon()
	dest := d.Registry.AddPrinter("office", "socket://printer.local", common.NewCapabilitySet())
	dest.State = common.EDestinationState.Stopped() // keep jobs queued, not started

	resp := d.Dispatch.Dispatch(validPrintRequest("office"))
	a.Equal(common.EErrorKind.None(), resp.Status)

	a.NoError(d.Registry.Delete("office"))

	_, stillRegistered := d.Registry.Find("office")
	a.False(stillRegistered)

	var remaining int
	for _, j := range d.Jobs.List("office") {
		if j.GetState().IsActive() {
			remaining++
		}
	}
	a.Zero(remaining)
}

func TestDaemonOnStatusLineSkipsPageTagAndLogsOthers(t *testing.T) {
	a := assert.New(t)
	d := newTestDaemon()
	a.NotPanics(func() {
		d.OnStatusLine(common.JobID(1), 123, common.EStatusTag.Page(), "1 1")
		d.OnStatusLine(common.JobID(1), 123, common.EStatusTag.Error(), "out of paper")
	})
}
