package pipeline

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/backpressure"
	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/procmgr"
)

type staticConverter struct {
	stages []Stage
	err    error
}

func (c staticConverter) Chain(sourceType, destType string) ([]Stage, error) {
	return c.stages, c.err
}

type collectingSink struct {
	mu    sync.Mutex
	lines []string
	tags  []common.StatusTag
}

func (s *collectingSink) OnStatusLine(job common.JobID, pid int, tag common.StatusTag, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
	s.tags = append(s.tags, tag)
}

func (s *collectingSink) snapshot() ([]string, []common.StatusTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.lines...), append([]common.StatusTag{}, s.tags...)
}

func TestPlanRejectsChainOverFilterLimit(t *testing.T) {
	a := assert.New(t)
	conv := staticConverter{stages: []Stage{{Program: "a2ps", Cost: 60}, {Program: "pstops", Cost: 60}}}
	b := NewBuilder(conv, nil, nil, 100, nil)

	_, err := b.Plan("text/plain", "application/vnd.cups-raster")
	a.Error(err)
}

func TestPlanAllowsChainUnderFilterLimit(t *testing.T) {
	a := assert.New(t)
	conv := staticConverter{stages: []Stage{{Program: "a2ps", Cost: 10}}}
	b := NewBuilder(conv, nil, nil, 100, nil)

	stages, err := b.Plan("text/plain", "application/postscript")
	a.NoError(err)
	a.Len(stages, 1)
}

func TestPlanWrapsConverterErrorAsDocumentFormatNotSupported(t *testing.T) {
	a := assert.New(t)
	conv := staticConverter{err: errors.New("no path")}
	b := NewBuilder(conv, nil, nil, 0, nil)

	_, err := b.Plan("image/x-made-up", "application/postscript")
	a.Error(err)
}

func TestEnvToEnvironIncludesJobFields(t *testing.T) {
	a := assert.New(t)
	env := Env{Language: "en", Charset: "utf-8", ContentType: "text/plain", DeviceURI: "usb://x", JobID: 7, User: "alice", Title: "doc", Copies: 2, Options: "sides=two"}
	out := env.ToEnviron([]string{"PATH=/bin"})

	a.Contains(out, "PATH=/bin")
	a.Contains(out, "PRINTSCHED_JOB_ID=7")
	a.Contains(out, "PRINTSCHED_USER=alice")
}

func TestClassifyRecognizesStatusTags(t *testing.T) {
	a := assert.New(t)

	tag, text := classify("PAGE: 1 3")
	a.Equal(common.EStatusTag.Page(), tag)
	a.Equal("1 3", text)

	tag, text = classify("STATE: +media-empty-warning")
	a.Equal(common.EStatusTag.State(), tag)
	a.Equal("+media-empty-warning", text)

	tag, _ = classify("no tag here at all")
	a.Equal(common.EStatusTag.None(), tag)
}

func TestStartRunsChainAndClassifiesStatusLines(t *testing.T) {
	a := assert.New(t)

	mgr := procmgr.NewManager(common.NullLogger{})
	limiter := backpressure.NewLimiter(2, 0)
	sink := &collectingSink{}
	conv := staticConverter{}
	b := NewBuilder(conv, mgr, limiter, 0, sink)

	jobFile, err := os.CreateTemp(t.TempDir(), "job")
	a.NoError(err)
	defer jobFile.Close()

	stages := []Stage{
		{Program: "/bin/sh", Argv: []string{"/bin/sh", "-c", "echo PAGE: 1 1 >&2"}},
	}

	run, err := b.Start(context.Background(), 99, jobFile, Env{}, stages, Backend{}, 0)
	a.NoError(err)
	defer run.Close()

	for _, p := range run.Processes() {
		_, err := p.Wait()
		a.NoError(err)
	}

	a.Eventually(func() bool {
		lines, _ := sink.snapshot()
		for _, l := range lines {
			if l == "1 1" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	a.Equal(1, limiter.Live(), "Release is the caller's responsibility once the run is fully reaped")
	limiter.Release()
	a.Equal(0, limiter.Live())
}
