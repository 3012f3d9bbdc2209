package access

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostMaskSuffixDomain(t *testing.T) {
	a := assert.New(t)
	m := NewHostMask(".example.com")

	a.True(m.Matches(PeerInfo{Hostname: "printserver.example.com"}))
	a.True(m.Matches(PeerInfo{Hostname: "example.com"}))
	a.False(m.Matches(PeerInfo{Hostname: "notexample.com"}))
}

func TestHostMaskExact(t *testing.T) {
	a := assert.New(t)
	m := NewHostMask("printserver.example.com")

	a.True(m.Matches(PeerInfo{Hostname: "printserver.example.com"}))
	a.False(m.Matches(PeerInfo{Hostname: "other.example.com"}))
}

func TestCIDRMask(t *testing.T) {
	a := assert.New(t)
	m, err := NewCIDRMask("192.168.1.0/24")
	a.NoError(err)

	a.True(m.Matches(PeerInfo{IP: net.ParseIP("192.168.1.42")}))
	a.False(m.Matches(PeerInfo{IP: net.ParseIP("10.0.0.1")}))
}

func TestInterfaceMasks(t *testing.T) {
	a := assert.New(t)
	_, eth0Net, _ := net.ParseCIDR("172.16.0.0/16")

	ifaces := []NamedInterface{{Name: "eth0", Nets: []*net.IPNet{eth0Net}}}
	peer := PeerInfo{IP: net.ParseIP("172.16.5.5"), Interfaces: ifaces}

	a.True(LocalMask{}.Matches(peer))
	a.True(InterfaceMask{Name: "eth0"}.Matches(peer))
	a.False(InterfaceMask{Name: "eth1"}.Matches(peer))
}
