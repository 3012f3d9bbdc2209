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

// Package mimeconv is the default implementation of pipeline.Converter: a
// table of direct source/destination conversions, read from a directive
// file in the style of cupsd's mime.convs ("source destination cost
// program [args...]"), with chains of length > 1 found by a breadth-first
// search over the table. pipeline.Builder treats Converter as an external
// collaborator it never constructs itself, so a deployment that needs a
// richer conversion graph can supply its own instead of this one.
package mimeconv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inkwell/printsched/pipeline"
)

type edge struct {
	dest    string
	cost    int
	program string
	argv    []string
}

// Table is a pipeline.Converter backed by direct source->dest edges.
type Table struct {
	edges map[string][]edge
}

func NewTable() *Table {
	return &Table{edges: make(map[string][]edge)}
}

// AddConversion registers a direct filter from source to dest.
func (t *Table) AddConversion(source, dest string, cost int, program string, argv ...string) {
	t.edges[source] = append(t.edges[source], edge{dest: dest, cost: cost, program: program, argv: argv})
}

// Load reads a mime.convs-style directive file into a new Table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: expected \"source dest cost program [args...]\"", lineNo)
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad cost: %w", lineNo, err)
		}
		t.AddConversion(fields[0], fields[1], cost, fields[3], fields[4:]...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Chain implements pipeline.Converter, finding the lowest-hop path from
// sourceType to destType by breadth-first search over direct conversions.
// Identity conversions (sourceType == destType) return an empty chain.
func (t *Table) Chain(sourceType, destType string) ([]pipeline.Stage, error) {
	if sourceType == destType {
		return nil, nil
	}

	type frame struct {
		mime  string
		path  []pipeline.Stage
		total int
	}
	visited := map[string]bool{sourceType: true}
	queue := []frame{{mime: sourceType}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range t.edges[cur.mime] {
			if visited[e.dest] {
				continue
			}
			path := append(append([]pipeline.Stage{}, cur.path...), pipeline.Stage{
				Program: e.program,
				Argv:    append([]string{e.program}, e.argv...),
				Cost:    e.cost,
			})
			if e.dest == destType {
				return path, nil
			}
			visited[e.dest] = true
			queue = append(queue, frame{mime: e.dest, path: path})
		}
	}
	return nil, fmt.Errorf("mimeconv: no conversion path from %q to %q", sourceType, destType)
}
