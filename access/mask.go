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

package access

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// PeerInfo is everything a Mask needs to decide whether a request matches.
type PeerInfo struct {
	IP         net.IP
	Hostname   string // reverse-resolved, empty if unavailable
	Loopback   bool
	Interfaces []NamedInterface // local interfaces, used by @LOCAL / @IF(name)
}

// NamedInterface is one local network interface's name and the subnets
// assigned to it, used to evaluate @LOCAL and @IF(name) masks.
type NamedInterface struct {
	Name string
	Nets []*net.IPNet
}

// Mask is one entry of an allow-mask or deny-mask list (spec §3, §4.2).
type Mask interface {
	Matches(peer PeerInfo) bool
}

// HostMask matches a hostname exactly, or as a suffix domain if the pattern
// begins with '.' (spec §4.2 "Mask semantics").
type HostMask struct {
	Pattern string
}

func NewHostMask(pattern string) HostMask {
	normalized, err := idna.Lookup.ToASCII(pattern)
	if err != nil {
		normalized = pattern
	}
	return HostMask{Pattern: strings.ToLower(normalized)}
}

func (m HostMask) Matches(peer PeerInfo) bool {
	if peer.Hostname == "" {
		return false
	}
	host, err := idna.Lookup.ToASCII(peer.Hostname)
	if err != nil {
		host = peer.Hostname
	}
	host = strings.ToLower(host)

	if strings.HasPrefix(m.Pattern, ".") {
		return strings.HasSuffix(host, m.Pattern) || host == strings.TrimPrefix(m.Pattern, ".")
	}
	return host == m.Pattern
}

// CIDRMask matches a peer whose IP falls in (addr & netmask) == network.
type CIDRMask struct {
	Network *net.IPNet
}

func NewCIDRMask(cidr string) (CIDRMask, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return CIDRMask{}, err
	}
	return CIDRMask{Network: network}, nil
}

func (m CIDRMask) Matches(peer PeerInfo) bool {
	return peer.IP != nil && m.Network.Contains(peer.IP)
}

// LocalMask is @LOCAL: matches a peer whose address belongs to any local
// interface's subnet.
type LocalMask struct{}

func (LocalMask) Matches(peer PeerInfo) bool {
	for _, iface := range peer.Interfaces {
		for _, n := range iface.Nets {
			if n.Contains(peer.IP) {
				return true
			}
		}
	}
	return false
}

// InterfaceMask is @IF(name): matches a peer whose address belongs to the
// named local interface's subnet.
type InterfaceMask struct {
	Name string
}

func (m InterfaceMask) Matches(peer PeerInfo) bool {
	for _, iface := range peer.Interfaces {
		if iface.Name != m.Name {
			continue
		}
		for _, n := range iface.Nets {
			if n.Contains(peer.IP) {
				return true
			}
		}
	}
	return false
}
