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

// Package banner assembles a job's start/end banner page from a named
// template, substituting the job's attribute bag, per spec §4.8.
package banner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inkwell/printsched/jobstore"
	"github.com/inkwell/printsched/schederr"

	"github.com/inkwell/printsched/common"
)

// Index is the banner directory indexed at startup: a set of named
// templates, each with the MIME type the filter pipeline should treat the
// rendered banner as.
type Index struct {
	mu        sync.RWMutex
	templates map[string]templateEntry
	mimeType  string
}

type templateEntry struct {
	path string
}

// NewIndex scans dir for banner template files and indexes them by their
// base name (without extension), so "standard.ps" is looked up as
// "standard". mimeType is the type every banner in this directory renders
// to (spec assumes one banner MIME type per daemon, typically PostScript).
func NewIndex(dir, mimeType string) (*Index, error) {
	idx := &Index{templates: make(map[string]templateEntry), mimeType: mimeType}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, schederr.Wrap(err, common.EErrorKind.Internal(), "reading banner directory")
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		idx.templates[name] = templateEntry{path: filepath.Join(dir, e.Name())}
	}
	return idx, nil
}

// MimeType reports the MIME type rendered banners carry.
func (idx *Index) MimeType() string { return idx.mimeType }

// Has reports whether name is a known banner template.
func (idx *Index) Has(name string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.templates[name]
	return ok
}

// Assembler renders a banner template against a job's attribute bag and
// writes the result to a spool file, per spec §4.8.
type Assembler struct {
	index     *Index
	spoolDir  string
}

func NewAssembler(index *Index, spoolDir string) *Assembler {
	return &Assembler{index: index, spoolDir: spoolDir}
}

// Render reads templateName line by line, substitutes `{attribute-name}`
// tokens from job.Attributes (escaping values MIME-appropriately — for
// PostScript, parentheses and backslashes are escaped so a value cannot
// break out of a `(...)` string literal), and writes the result to a new
// file in the spool directory. `\c` in the template passes the next
// character through verbatim, bypassing substitution.
func (a *Assembler) Render(job *jobstore.Job, templateName string) (jobstore.JobFile, error) {
	a.index.mu.RLock()
	entry, ok := a.index.templates[templateName]
	a.index.mu.RUnlock()
	if !ok {
		return jobstore.JobFile{}, schederr.NotFound(fmt.Sprintf("no banner template named %q", templateName))
	}

	raw, err := os.ReadFile(entry.path)
	if err != nil {
		return jobstore.JobFile{}, schederr.Wrap(err, common.EErrorKind.Internal(), "reading banner template")
	}

	rendered := substitute(string(raw), job, a.index.mimeType)

	outPath := filepath.Join(a.spoolDir, fmt.Sprintf("banner-%s-%s", job.ID.String(), templateName))
	if err := os.WriteFile(outPath, []byte(rendered), 0600); err != nil {
		return jobstore.JobFile{}, schederr.Wrap(err, common.EErrorKind.Internal(), "writing rendered banner")
	}

	return jobstore.JobFile{Path: outPath, MimeType: a.index.mimeType, IsBanner: true}, nil
}

// substitute walks template line by line, expanding `{name}` tokens from
// job's attribute bag and passing `\c` escapes through literally.
func substitute(template string, job *jobstore.Job, mimeType string) string {
	var out strings.Builder
	lines := strings.Split(template, "\n")
	for i, line := range lines {
		out.WriteString(expandLine(line, job, mimeType))
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func expandLine(line string, job *jobstore.Job, mimeType string) string {
	var out strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == 'c':
			if i+2 < len(runes) {
				out.WriteRune(runes[i+2])
				i += 2
			} else {
				i++
			}
		case runes[i] == '{':
			end := indexRune(runes, i+1, '}')
			if end < 0 {
				out.WriteRune(runes[i])
				continue
			}
			name := string(runes[i+1 : end])
			out.WriteString(escapeForMime(attributeValue(job, name), mimeType))
			i = end
		default:
			out.WriteRune(runes[i])
		}
	}
	return out.String()
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func attributeValue(job *jobstore.Job, name string) string {
	switch name {
	case "job-id":
		return job.ID.String()
	case "job-originating-user-name":
		return job.Owner
	case "job-name":
		return job.Title
	case "job-printer-uri":
		return job.Destination
	}
	if v, ok := job.Attributes[name]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// escapeForMime escapes a substituted value so it cannot break out of the
// destination format's string syntax; PostScript's `(...)` literal only
// needs backslash and parenthesis escaping.
func escapeForMime(value, mimeType string) string {
	if mimeType != "application/postscript" {
		return value
	}
	replacer := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return replacer.Replace(value)
}
