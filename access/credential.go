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
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/inkwell/printsched/common"
)

// CredentialChecker is the "external system-credentials collaborator" spec
// §4.2 delegates the actual cryptographic check to: the core only ever
// supplies a username/secret pair and an AuthType and gets back a bool.
type CredentialChecker interface {
	// Verify checks username/secret against authType's scheme.
	Verify(authType common.AuthType, username, secret string) (bool, error)
	// GroupMember reports whether username belongs to group.
	GroupMember(username, group string) (bool, error)
}

// LocalCredentialChecker verifies basic/digest credentials against a local
// bcrypt-hashed password file and supplementary group file, and bearer
// tokens (negotiate) against an OAuth2 token source — the shapes cupsd's
// own pam/krb5 backends take, kept here as the two the pack's dependency
// set can ground without vendoring a PAM or Kerberos binding.
type LocalCredentialChecker struct {
	mu          sync.RWMutex
	passwords   map[string][]byte // username -> bcrypt hash
	groups      map[string][]string
	tokenSource oauth2.TokenSource // used for negotiate
}

func NewLocalCredentialChecker() *LocalCredentialChecker {
	return &LocalCredentialChecker{
		passwords: make(map[string][]byte),
		groups:    make(map[string][]string),
	}
}

func (c *LocalCredentialChecker) SetPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passwords[username] = hash
	return nil
}

func (c *LocalCredentialChecker) SetGroupMembers(group string, members []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group] = members
}

func (c *LocalCredentialChecker) SetTokenSource(ts oauth2.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = ts
}

func (c *LocalCredentialChecker) Verify(authType common.AuthType, username, secret string) (bool, error) {
	switch authType {
	case common.EAuthType.Basic(), common.EAuthType.BasicDigest():
		return c.verifyBasic(username, secret)
	case common.EAuthType.Digest():
		// the caller is expected to have already reduced the digest
		// response to a plain secret comparison using a DigestNonce
		// minted by this package; Verify just checks it against the
		// stored bcrypt hash the same way Basic does.
		return c.verifyBasic(username, secret)
	case common.EAuthType.Negotiate():
		return c.verifyNegotiate(secret)
	default:
		return true, nil
	}
}

func (c *LocalCredentialChecker) verifyBasic(username, secret string) (bool, error) {
	c.mu.RLock()
	hash, ok := c.passwords[username]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(secret))
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (c *LocalCredentialChecker) verifyNegotiate(bearerToken string) (bool, error) {
	c.mu.RLock()
	ts := c.tokenSource
	c.mu.RUnlock()
	if ts == nil {
		return false, nil
	}
	tok, err := ts.Token()
	if err != nil {
		return false, err
	}
	return tok.Valid() && tok.AccessToken == bearerToken, nil
}

func (c *LocalCredentialChecker) GroupMember(username, group string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.groups[group] {
		if m == username {
			return true, nil
		}
	}
	return false, nil
}

var _ CredentialChecker = (*LocalCredentialChecker)(nil)

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// DigestNonceStore mints and verifies the per-connection nonces spec §4.2
// requires for digest auth, each bound to the peer host it was issued to
// and expiring after a short window.
type DigestNonceStore struct {
	mu     sync.Mutex
	nonces map[string]digestNonce
	ttl    time.Duration
}

type digestNonce struct {
	peerHost string
	issued   time.Time
}

func NewDigestNonceStore(ttl time.Duration) *DigestNonceStore {
	return &DigestNonceStore{
		nonces: make(map[string]digestNonce),
		ttl:    ttl,
	}
}

// Mint returns a fresh nonce bound to peerHost.
func (s *DigestNonceStore) Mint(peerHost string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	nonce := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce] = digestNonce{peerHost: peerHost, issued: time.Now()}
	return nonce, nil
}

// Verify reports whether nonce was minted for peerHost and has not expired.
// It consumes the nonce: a nonce can only be used once.
func (s *DigestNonceStore) Verify(nonce, peerHost string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[nonce]
	if !ok {
		return false
	}
	delete(s.nonces, nonce)

	if entry.peerHost != peerHost {
		return false
	}
	return time.Since(entry.issued) <= s.ttl
}
