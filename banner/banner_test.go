package banner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/jobstore"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	assert.NoError(t, err)
}

func TestIndexScansTemplatesByBaseName(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	writeTemplate(t, dir, "standard.ps", "%!PS\n")

	idx, err := NewIndex(dir, "application/postscript")
	a.NoError(err)
	a.True(idx.Has("standard"))
	a.False(idx.Has("missing"))
}

func TestRenderSubstitutesAttributeTokens(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	writeTemplate(t, dir, "standard.ps", "%!PS\n(Job {job-id} for {job-originating-user-name})\n")

	idx, err := NewIndex(dir, "application/postscript")
	a.NoError(err)

	spoolDir := t.TempDir()
	asm := NewAssembler(idx, spoolDir)

	job := jobstore.New(42, "office", "alice", "report.pdf", 50)
	file, err := asm.Render(job, "standard")
	a.NoError(err)
	a.Equal("application/postscript", file.MimeType)
	a.True(file.IsBanner)

	content, err := os.ReadFile(file.Path)
	a.NoError(err)
	a.Contains(string(content), "Job 42 for alice")
}

func TestRenderEscapesPostScriptSpecialCharacters(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	writeTemplate(t, dir, "standard.ps", "(Title: {job-name})\n")

	idx, err := NewIndex(dir, "application/postscript")
	a.NoError(err)
	asm := NewAssembler(idx, t.TempDir())

	job := jobstore.New(1, "office", "alice", "a (weird) name", 50)
	file, err := asm.Render(job, "standard")
	a.NoError(err)

	content, err := os.ReadFile(file.Path)
	a.NoError(err)
	a.Contains(string(content), `a \(weird\) name`)
}

func TestExpandLinePassesBackslashCEscapeThrough(t *testing.T) {
	a := assert.New(t)
	out := expandLine(`\c{not a token}`, jobstore.New(1, "p", "u", "t", 1), "text/plain")
	a.Equal("{not a token}", out)
}

func TestRenderUnknownTemplateReturnsNotFound(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	idx, err := NewIndex(dir, "application/postscript")
	a.NoError(err)
	asm := NewAssembler(idx, t.TempDir())

	_, err = asm.Render(jobstore.New(1, "p", "u", "t", 1), "missing")
	a.Error(err)
}
