package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
)

func TestAddPrinterCreatesThenModifiesInPlace(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Hour, nil)

	d1 := r.AddPrinter("office", "usb://device1", common.NewCapabilitySet())
	a.Equal(common.EDestinationKind.LocalPrinter(), d1.Kind)

	d2 := r.AddPrinter("office", "usb://device2", common.NewCapabilitySet())
	a.Same(d1, d2)
	a.Equal("usb://device2", d2.DeviceURI)
}

func TestAddPrinterRenamesImplicitClassShadow(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Hour, nil)

	shadow := NewLocalClass("office", nil)
	shadow.Kind = common.EDestinationKind.ImplicitClass()
	r.destinations["office"] = shadow

	r.AddPrinter("office", "usb://device1", common.NewCapabilitySet())

	renamed, ok := r.Find("Anyoffice")
	a.True(ok)
	a.Equal(common.EDestinationKind.ImplicitClass(), renamed.Kind)

	printer, ok := r.Find("office")
	a.True(ok)
	a.Equal(common.EDestinationKind.LocalPrinter(), printer.Kind)
}

func TestAddClassFailsOnUnresolvedMember(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Hour, nil)
	r.AddPrinter("p1", "usb://d1", common.NewCapabilitySet())

	_, err := r.AddClass("lab", []string{"p1", "ghost"})
	a.Error(err)

	_, ok := r.Find("lab")
	a.False(ok)
}

func TestDeleteCancelsJobsAndClearsMembershipAndDefault(t *testing.T) {
	a := assert.New(t)

	var cancelled string
	r := NewRegistry(time.Hour, func(name string) { cancelled = name })

	r.AddPrinter("p1", "usb://d1", common.NewCapabilitySet())
	r.AddPrinter("p2", "usb://d2", common.NewCapabilitySet())
	_, err := r.AddClass("lab", []string{"p1", "p2"})
	a.NoError(err)
	a.NoError(r.SetDefault("p1"))

	a.NoError(r.Delete("p1"))
	a.Equal("p1", cancelled)

	_, ok := r.Default()
	a.False(ok)

	lab, ok := r.Find("lab")
	a.True(ok)
	a.Equal([]string{"p2"}, lab.Members)
}

func TestExpireBrowsedDeletesStaleRemotes(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Minute, nil)

	stale := &Destination{Name: "remote1", Kind: common.EDestinationKind.RemotePrinter(), BrowseTime: time.Now().Add(-time.Hour)}
	fresh := &Destination{Name: "remote2", Kind: common.EDestinationKind.RemotePrinter(), BrowseTime: time.Now()}
	r.destinations["remote1"] = stale
	r.destinations["remote2"] = fresh

	expired := r.ExpireBrowsed(time.Now())
	a.Equal([]string{"remote1"}, expired)

	_, ok := r.Find("remote1")
	a.False(ok)
	_, ok = r.Find("remote2")
	a.True(ok)
}

func TestReconcileImplicitClassesAggregatesSameBaseName(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Hour, nil)

	r.destinations["office@host1"] = &Destination{Name: "office@host1", Kind: common.EDestinationKind.RemotePrinter(), Hostname: "host1"}
	r.destinations["office@host2"] = &Destination{Name: "office@host2", Kind: common.EDestinationKind.RemotePrinter(), Hostname: "host2"}

	r.ReconcileImplicitClasses()

	cls, ok := r.Find("office")
	a.True(ok)
	a.Equal(common.EDestinationKind.ImplicitClass(), cls.Kind)
	a.ElementsMatch([]string{"office@host1", "office@host2"}, cls.Members)
}

func TestAttributesForCachesAndRebuildsAfterInvalidation(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(time.Hour, nil)
	r.AddPrinter("p1", "usb://d1", common.NewCapabilitySet())

	calls := 0
	build := func(d *Destination) map[string]any {
		calls++
		return map[string]any{"device-uri": d.DeviceURI}
	}

	attrs1, ok := r.AttributesFor("p1", build)
	a.True(ok)
	a.Equal("usb://d1", attrs1["device-uri"])
	a.Equal(1, calls)

	attrs2, ok := r.AttributesFor("p1", build)
	a.True(ok)
	a.Equal(attrs1, attrs2)
	a.Equal(1, calls, "second call should hit the cache")

	r.AddPrinter("p1", "usb://d2", common.NewCapabilitySet())

	attrs3, ok := r.AttributesFor("p1", build)
	a.True(ok)
	a.Equal("usb://d2", attrs3["device-uri"])
	a.Equal(2, calls)
}
