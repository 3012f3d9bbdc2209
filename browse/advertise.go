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

package browse

import (
	"time"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/registry"
)

// Announcement is one remote destination sighting received from the
// network, e.g. a DNS-SD resolve or a peer daemon's browse packet. The
// transport that produces these is outside this package's scope; Advertiser
// only knows how to fold one into the registry.
type Announcement struct {
	Name      string
	Hostname  string
	DeviceURI string
	Kind      common.DestinationKind // RemotePrinter or RemoteClass
	Info      string
}

// Advertiser folds remote Announcements into the registry, reconciles
// implicit classes after any change, periodically ages out remotes whose
// browse-time has expired, and fires Bus events so other subsystems (an
// IPP subscription list, say) learn about the change without polling the
// registry themselves.
type Advertiser struct {
	registry *registry.Registry
	bus      *Bus[DestinationEvent]
}

// DestinationEvent is what Advertiser publishes on its Bus.
type DestinationEvent struct {
	Name string
	Kind string // "added", "updated", "removed"
}

func NewAdvertiser(reg *registry.Registry) *Advertiser {
	return &Advertiser{registry: reg, bus: NewBus[DestinationEvent]()}
}

func (a *Advertiser) Bus() *Bus[DestinationEvent] { return a.bus }

// Ingest folds one Announcement into the registry. Per spec §9's open
// question resolution (see DESIGN.md), a re-announcement whose Kind
// differs from what the registry currently holds for that name is treated
// as a delete-then-add rather than an in-place kind change, since a
// destination's Kind is otherwise immutable once created.
func (a *Advertiser) Ingest(ann Announcement, now time.Time) {
	existing, ok := a.registry.Find(ann.Name)
	if ok && existing.Kind != ann.Kind {
		_ = a.registry.Delete(ann.Name)
		ok = false
	}

	if !ok {
		d := a.registry.AddPrinter(ann.Name, ann.DeviceURI, common.NewCapabilitySet())
		d.Kind = ann.Kind
		d.Hostname = ann.Hostname
		d.Info = ann.Info
		d.BrowseTime = now
		a.registry.ReconcileImplicitClasses()
		a.bus.fireEvent(Event[DestinationEvent]{Kind: "added", Payload: DestinationEvent{Name: ann.Name, Kind: "added"}})
		return
	}

	existing.Hostname = ann.Hostname
	existing.DeviceURI = ann.DeviceURI
	existing.Info = ann.Info
	existing.BrowseTime = now
	a.bus.fireEvent(Event[DestinationEvent]{Kind: "updated", Payload: DestinationEvent{Name: ann.Name, Kind: "updated"}})
}

// AgeOut expires remotes past the registry's browse timeout and publishes a
// "removed" event for each; called periodically by the event loop.
func (a *Advertiser) AgeOut(now time.Time) []string {
	expired := a.registry.ExpireBrowsed(now)
	for _, name := range expired {
		a.bus.fireEvent(Event[DestinationEvent]{Kind: "removed", Payload: DestinationEvent{Name: name, Kind: "removed"}})
	}
	return expired
}
