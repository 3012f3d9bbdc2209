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

// Package access matches requests to Location rules and evaluates the
// Allow/Deny/Order policy and credential check spec §4.2 describes.
package access

import (
	"github.com/inkwell/printsched/common"
)

// HTTP methods a Location rule's method-mask may cover. Stored in a
// common.Bitmap alongside a destination's capability flags.
const (
	MethodGet = iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
)

// Rule is a Location rule (spec §3, §4.2).
type Rule struct {
	Path               string
	Methods            common.Bitmap
	RequireEncryption  bool
	Auth               common.AuthType
	RequiredGroup      string
	Order              common.OrderPolicy
	Satisfy            common.SatisfyPolicy
	AllowMasks         []Mask
	DenyMasks          []Mask
}

func NewRule(path string) *Rule {
	return &Rule{
		Path:    path,
		Methods: common.NewBitMap(MethodDelete + 1),
		Order:   common.EOrderPolicy.DenyThenAllow(),
		Satisfy: common.ESatisfy.All(),
	}
}

func (r *Rule) AllowMethod(method int) *Rule {
	r.Methods.Set(method)
	return r
}

func (r *Rule) coversMethod(method int) bool {
	return r.Methods.Test(method)
}

// hostAllowed evaluates the rule's Order policy against peer, per spec §4.2's
// "Order evaluation" paragraph: deny-then-allow starts from allow and only
// a later deny-mask match flips it, followed by a later allow-mask match
// flipping it back; allow-then-deny is the mirror image.
func (r *Rule) hostAllowed(peer PeerInfo) bool {
	if peer.Loopback {
		return true
	}

	matchesAny := func(masks []Mask) bool {
		for _, m := range masks {
			if m.Matches(peer) {
				return true
			}
		}
		return false
	}

	if r.Order == common.EOrderPolicy.DenyThenAllow() {
		allowed := true
		if matchesAny(r.DenyMasks) {
			allowed = false
		}
		if matchesAny(r.AllowMasks) {
			allowed = true
		}
		return allowed
	}

	// allow-then-deny: symmetric, start from deny
	allowed := false
	if matchesAny(r.AllowMasks) {
		allowed = true
	}
	if matchesAny(r.DenyMasks) {
		allowed = false
	}
	return allowed
}
