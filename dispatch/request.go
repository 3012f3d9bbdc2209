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

// Package dispatch validates and routes parsed requests to operation
// handlers per spec §4.7. The wire encoding itself is a collaborator; this
// package depends only on the parsed shapes described in spec §6.
package dispatch

import (
	"github.com/inkwell/printsched/access"
	"github.com/inkwell/printsched/common"
)

// AttributeGroup is one ordered group of named attributes in a request or
// response, e.g. "operation-attributes" or "job-attributes".
type AttributeGroup struct {
	Tag    string
	Values map[string]any
}

// Request is the parsed shape spec §6 says the core depends on: a version,
// an operation code, a request id, and ordered attribute groups.
type Request struct {
	VersionMajor int
	VersionMinor int
	Operation    common.OperationCode
	RequestID    int32
	Groups       []AttributeGroup

	PrinterURI string
	JobURI     string

	Peer     access.PeerInfo
	TLS      bool
	Username string
	Secret   string
}

// Attr looks up name in the first group that defines it, matching how a
// flat request typically carries operation-attributes followed by
// job-attributes groups with no name collisions expected.
func (r *Request) Attr(name string) (any, bool) {
	for _, g := range r.Groups {
		if v, ok := g.Values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (r *Request) AttrString(name string) string {
	v, ok := r.Attr(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Response is spec §6's mirrored id/version plus a status and ordered
// attribute groups.
type Response struct {
	VersionMajor int
	VersionMinor int
	RequestID    int32
	Status       common.ErrorKind
	Groups       []AttributeGroup
}
