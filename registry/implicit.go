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

package registry

import (
	"strings"

	"github.com/inkwell/printsched/common"
)

// baseName strips a "@host" suffix, e.g. "office-printer@host2" -> "office-printer".
func baseName(name string) string {
	if i := strings.LastIndex(name, "@"); i >= 0 {
		return name[:i]
	}
	return name
}

// ReconcileImplicitClasses implements spec §4.3's "Implicit classes"
// paragraph: whenever two or more printers share a base name distinguished
// only by an "@host" suffix, synthesize (or update) an implicit class
// aggregating them. Called after every AddPrinter driven by a remote
// announcement (browse.Advertiser is the only caller).
func (r *Registry) ReconcileImplicitClasses() {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := make(map[string][]string)
	for name, d := range r.destinations {
		if d.Kind != common.EDestinationKind.LocalPrinter() && d.Kind != common.EDestinationKind.RemotePrinter() {
			continue
		}
		if !strings.Contains(name, "@") {
			continue
		}
		base := baseName(name)
		groups[base] = append(groups[base], name)
	}

	for base, members := range groups {
		if len(members) < 2 {
			continue
		}

		className := base
		if existing, ok := r.destinations[base]; ok && !existing.Kind.IsClass() {
			className = "Any" + base
		}

		if existing, ok := r.destinations[className]; ok && existing.Kind == common.EDestinationKind.ImplicitClass() {
			existing.Members = members
			existing.touch()
			continue
		}

		d := NewLocalClass(className, members)
		d.Kind = common.EDestinationKind.ImplicitClass()
		r.destinations[className] = d
	}

	r.invalidateCacheLocked()
}
