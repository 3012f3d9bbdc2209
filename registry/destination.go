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

// Package registry holds the canonical set of destinations (printers and
// classes), serves lookups by name and URI, and enforces the naming and
// collision rules of spec §4.3.
package registry

import (
	"time"

	"github.com/inkwell/printsched/common"
)

// Destination is a printer or a class (spec §3). A single struct covers
// both kinds, distinguished by Kind; Members is only meaningful for classes.
type Destination struct {
	Name            string
	Kind            common.DestinationKind
	Capabilities    common.Bitmap
	URI             string
	DeviceURI       string // local only
	Hostname        string // remote only
	Info            string
	Location        string
	MoreInfo        string
	MakeAndModel    string
	BannerStart     string
	BannerEnd       string
	State           common.DestinationState
	StateMessage    string
	AcceptingJobs   bool
	BrowseTime      time.Time
	Members         []string // classes only, ordered, weak references by name

	// dirty marks the destination as changed since the last attribute
	// cache rebuild; the registry clears it when it rebuilds the cache.
	dirty bool
}

func NewLocalPrinter(name string) *Destination {
	return &Destination{
		Name:          name,
		Kind:          common.EDestinationKind.LocalPrinter(),
		URI:           "/printers/" + name,
		Capabilities:  common.NewCapabilitySet(),
		State:         common.EDestinationState.Idle(),
		AcceptingJobs: true,
		dirty:         true,
	}
}

func NewLocalClass(name string, members []string) *Destination {
	return &Destination{
		Name:          name,
		Kind:          common.EDestinationKind.LocalClass(),
		URI:           "/classes/" + name,
		Capabilities:  common.NewCapabilitySet(),
		State:         common.EDestinationState.Idle(),
		AcceptingJobs: true,
		Members:       members,
		dirty:         true,
	}
}

func (d *Destination) touch() {
	d.dirty = true
	if d.Kind.IsRemote() {
		d.BrowseTime = time.Now()
	}
}
