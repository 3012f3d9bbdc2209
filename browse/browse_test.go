package browse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/registry"
)

func TestIngestAddsRemotePrinter(t *testing.T) {
	a := assert.New(t)
	reg := registry.NewRegistry(time.Hour, nil)
	adv := NewAdvertiser(reg)

	var seen []DestinationEvent
	adv.Bus().Subscribe(func(ev Event[DestinationEvent]) { seen = append(seen, ev.Payload) })

	adv.Ingest(Announcement{Name: "office@host1", Hostname: "host1", Kind: common.EDestinationKind.RemotePrinter()}, time.Now())

	dest, ok := reg.Find("office@host1")
	a.True(ok)
	a.Equal(common.EDestinationKind.RemotePrinter(), dest.Kind)
	a.Len(seen, 1)
	a.Equal("added", seen[0].Kind)
}

func TestIngestTwoSameBaseNamesCreatesImplicitClass(t *testing.T) {
	a := assert.New(t)
	reg := registry.NewRegistry(time.Hour, nil)
	adv := NewAdvertiser(reg)

	now := time.Now()
	adv.Ingest(Announcement{Name: "office@host1", Hostname: "host1", Kind: common.EDestinationKind.RemotePrinter()}, now)
	adv.Ingest(Announcement{Name: "office@host2", Hostname: "host2", Kind: common.EDestinationKind.RemotePrinter()}, now)

	class, ok := reg.Find("office")
	a.True(ok)
	a.Equal(common.EDestinationKind.ImplicitClass(), class.Kind)
	a.ElementsMatch([]string{"office@host1", "office@host2"}, class.Members)
}

func TestIngestReannouncementWithDifferentKindDeletesAndReadds(t *testing.T) {
	a := assert.New(t)
	reg := registry.NewRegistry(time.Hour, nil)
	adv := NewAdvertiser(reg)

	now := time.Now()
	adv.Ingest(Announcement{Name: "remote1", Kind: common.EDestinationKind.RemotePrinter()}, now)
	adv.Ingest(Announcement{Name: "remote1", Kind: common.EDestinationKind.RemoteClass()}, now)

	dest, ok := reg.Find("remote1")
	a.True(ok)
	a.Equal(common.EDestinationKind.RemoteClass(), dest.Kind)
}

func TestAgeOutExpiresStaleRemoteAndFiresEvent(t *testing.T) {
	a := assert.New(t)
	reg := registry.NewRegistry(time.Millisecond, nil)
	adv := NewAdvertiser(reg)

	var removed []string
	adv.Bus().Subscribe(func(ev Event[DestinationEvent]) {
		if ev.Kind == "removed" {
			removed = append(removed, ev.Payload.Name)
		}
	})

	adv.Ingest(Announcement{Name: "remote1", Kind: common.EDestinationKind.RemotePrinter()}, time.Now().Add(-time.Hour))

	expired := adv.AgeOut(time.Now())
	a.Equal([]string{"remote1"}, expired)
	a.Equal([]string{"remote1"}, removed)

	_, ok := reg.Find("remote1")
	a.False(ok)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	a := assert.New(t)
	bus := NewBus[int]()
	count := 0
	id := bus.Subscribe(func(ev Event[int]) { count++ })
	bus.fireEvent(Event[int]{Payload: 1})
	bus.Unsubscribe(id)
	bus.fireEvent(Event[int]{Payload: 2})
	a.Equal(1, count)
}
