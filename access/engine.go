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
	"sync"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/schederr"
)

// Request is what the dispatcher asks the Engine to authorize.
type Request struct {
	Path     string
	Method   int
	Peer     PeerInfo
	TLS      bool
	Username string
	Secret   string
}

// Engine holds the set of configured Location rules and evaluates requests
// against them (spec §4.2).
type Engine struct {
	mu         sync.RWMutex
	rules      []*Rule
	credential CredentialChecker
}

func NewEngine(credential CredentialChecker) *Engine {
	return &Engine{credential: credential}
}

// CheckGroupMembership reports whether username belongs to group, for
// callers outside this package that need the same admin-group test
// Authorize applies internally (spec §4.7's "member of admin group" sub-check
// for privileged dispatcher operations). root is always considered a member.
func (e *Engine) CheckGroupMembership(username, group string) (bool, error) {
	if username == "root" {
		return true, nil
	}
	if e.credential == nil {
		return false, nil
	}
	return e.credential.GroupMember(username, group)
}

// SetRules replaces the full rule set, e.g. on a reconfigure reload.
func (e *Engine) SetRules(rules []*Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// bestMatch returns the rule with the longest Path whose method-mask covers
// method, or nil if none matches (spec §4.2 "Match algorithm").
func (e *Engine) bestMatch(path string, method int) *Rule {
	var best *Rule
	for _, r := range e.rules {
		if !r.coversMethod(method) {
			continue
		}
		if len(path) < len(r.Path) || path[:len(r.Path)] != r.Path {
			continue
		}
		if best == nil || len(r.Path) > len(best.Path) {
			best = r
		}
	}
	return best
}

// Authorize implements spec §4.2's four responsibilities in order: rule
// selection, host allow/deny evaluation, TLS requirement, credential check.
func (e *Engine) Authorize(req Request) error {
	e.mu.RLock()
	rule := e.bestMatch(req.Path, req.Method)
	e.mu.RUnlock()

	if rule == nil {
		return schederr.Forbidden("no Location rule matches this request")
	}

	hostOK := rule.hostAllowed(req.Peer)

	if rule.RequireEncryption && !req.TLS {
		return schederr.New(common.EErrorKind.UpgradeRequired(), "this resource requires an encrypted connection")
	}

	credOK := true
	var credErr error
	if rule.Auth != common.EAuthType.None() {
		credOK, credErr = e.checkCredential(rule, req)
	}

	var satisfied bool
	if rule.Satisfy == common.ESatisfy.Any() {
		satisfied = hostOK || credOK
	} else {
		satisfied = hostOK && credOK
	}

	if !satisfied {
		if credErr != nil {
			return credErr
		}
		if !hostOK {
			return schederr.Forbidden("client address is not permitted by this Location's Allow/Deny rules")
		}
		return schederr.Unauthorized("credentials missing or incorrect")
	}
	return nil
}

func (e *Engine) checkCredential(rule *Rule, req Request) (bool, error) {
	if e.credential == nil {
		return false, schederr.Unauthorized("no credential checker configured")
	}
	if req.Username == "" {
		return false, schederr.Unauthorized("authentication required")
	}

	ok, err := e.credential.Verify(rule.Auth, req.Username, req.Secret)
	if err != nil {
		return false, schederr.Wrap(err, common.EErrorKind.Internal(), "credential check failed")
	}
	if !ok {
		return false, schederr.Unauthorized("invalid credentials")
	}

	if rule.RequiredGroup == "" {
		return true, nil
	}
	if req.Username == "root" {
		return true, nil
	}
	member, err := e.credential.GroupMember(req.Username, rule.RequiredGroup)
	if err != nil {
		return false, schederr.Wrap(err, common.EErrorKind.Internal(), "group membership check failed")
	}
	if !member {
		return false, schederr.Unauthorized("user is not a member of the required group")
	}
	return true, nil
}
