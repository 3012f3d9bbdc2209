package access

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/schederr"
)

func TestBestMatchPicksLongestCoveringPath(t *testing.T) {
	a := assert.New(t)

	root := NewRule("/").AllowMethod(MethodGet)
	admin := NewRule("/admin").AllowMethod(MethodGet)

	e := NewEngine(nil)
	e.SetRules([]*Rule{root, admin})

	a.Same(admin, e.bestMatch("/admin/conf", MethodGet))
	a.Same(root, e.bestMatch("/jobs", MethodGet))
	a.Nil(e.bestMatch("/admin", MethodPost))
}

func TestAuthorizeForbiddenWithNoMatchingRule(t *testing.T) {
	a := assert.New(t)
	e := NewEngine(nil)
	err := e.Authorize(Request{Path: "/jobs", Method: MethodGet})
	a.Error(err)
}

func TestAuthorizeDenyThenAllowOrder(t *testing.T) {
	a := assert.New(t)

	cidr, err := NewCIDRMask("10.0.0.0/8")
	a.NoError(err)

	rule := NewRule("/admin").AllowMethod(MethodGet)
	rule.Order = common.EOrderPolicy.DenyThenAllow()
	rule.DenyMasks = []Mask{AllMask{}}
	rule.AllowMasks = []Mask{cidr}

	e := NewEngine(nil)
	e.SetRules([]*Rule{rule})

	allowed := Request{Path: "/admin", Method: MethodGet, Peer: PeerInfo{IP: net.ParseIP("10.1.2.3")}}
	a.NoError(e.Authorize(allowed))

	denied := Request{Path: "/admin", Method: MethodGet, Peer: PeerInfo{IP: net.ParseIP("192.168.1.1")}}
	a.Error(e.Authorize(denied))
}

func TestAuthorizeRequiresEncryption(t *testing.T) {
	a := assert.New(t)

	rule := NewRule("/admin").AllowMethod(MethodGet)
	rule.RequireEncryption = true

	e := NewEngine(nil)
	e.SetRules([]*Rule{rule})

	err := e.Authorize(Request{Path: "/admin", Method: MethodGet, Peer: PeerInfo{Loopback: true}, TLS: false})
	a.Error(err)
	a.Equal(common.EErrorKind.UpgradeRequired(), schederr.KindOf(err))
}

func TestAuthorizeCredentialCheck(t *testing.T) {
	a := assert.New(t)

	checker := NewLocalCredentialChecker()
	a.NoError(checker.SetPassword("alice", "correct-horse"))

	rule := NewRule("/admin").AllowMethod(MethodGet)
	rule.Auth = common.EAuthType.Basic()
	rule.DenyMasks = []Mask{AllMask{}}
	rule.Satisfy = common.ESatisfy.Any()

	e := NewEngine(checker)
	e.SetRules([]*Rule{rule})

	good := Request{Path: "/admin", Method: MethodGet, Username: "alice", Secret: "correct-horse"}
	a.NoError(e.Authorize(good))

	bad := Request{Path: "/admin", Method: MethodGet, Username: "alice", Secret: "wrong"}
	a.Error(e.Authorize(bad))
}

func TestLoopbackAlwaysAllowed(t *testing.T) {
	a := assert.New(t)

	rule := NewRule("/admin").AllowMethod(MethodGet)
	rule.DenyMasks = []Mask{AllMask{}}

	e := NewEngine(nil)
	e.SetRules([]*Rule{rule})

	a.NoError(e.Authorize(Request{Path: "/admin", Method: MethodGet, Peer: PeerInfo{Loopback: true}}))
}

// AllMask matches every peer; used in tests to exercise deny-mask evaluation
// without constructing a real CIDR covering an arbitrary test address.
type AllMask struct{}

func (AllMask) Matches(PeerInfo) bool { return true }
