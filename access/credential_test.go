package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
)

func TestLocalCredentialCheckerBasicAuth(t *testing.T) {
	a := assert.New(t)
	c := NewLocalCredentialChecker()
	a.NoError(c.SetPassword("bob", "hunter2"))

	ok, err := c.Verify(common.EAuthType.Basic(), "bob", "hunter2")
	a.NoError(err)
	a.True(ok)

	ok, err = c.Verify(common.EAuthType.Basic(), "bob", "wrong")
	a.NoError(err)
	a.False(ok)

	ok, err = c.Verify(common.EAuthType.Basic(), "nobody", "x")
	a.NoError(err)
	a.False(ok)
}

func TestLocalCredentialCheckerGroupMembership(t *testing.T) {
	a := assert.New(t)
	c := NewLocalCredentialChecker()
	c.SetGroupMembers("operators", []string{"alice", "bob"})

	ok, err := c.GroupMember("alice", "operators")
	a.NoError(err)
	a.True(ok)

	ok, err = c.GroupMember("mallory", "operators")
	a.NoError(err)
	a.False(ok)
}

func TestDigestNonceStoreSingleUseAndHostBinding(t *testing.T) {
	a := assert.New(t)
	s := NewDigestNonceStore(time.Minute)

	nonce, err := s.Mint("client.example.com")
	a.NoError(err)

	a.False(s.Verify(nonce, "other.example.com"))

	nonce2, err := s.Mint("client.example.com")
	a.NoError(err)
	a.True(s.Verify(nonce2, "client.example.com"))
	// consumed: a second verify of the same nonce fails
	a.False(s.Verify(nonce2, "client.example.com"))
}

func TestDigestNonceStoreExpiry(t *testing.T) {
	a := assert.New(t)
	s := NewDigestNonceStore(0)

	nonce, err := s.Mint("client.example.com")
	a.NoError(err)
	time.Sleep(time.Millisecond)
	a.False(s.Verify(nonce, "client.example.com"))
}
