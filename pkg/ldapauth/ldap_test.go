package ldapauth

import (
	"errors"
	"testing"

	ldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"

	"github.com/ppmlab/atlas/pkg/config"
)

type fakeConn struct {
	users   map[string]string // dn -> password
	entries []*ldap.Entry
	filter  string
	closed  bool
}

func (f *fakeConn) Bind(username, password string) error {
	if username == "cn=svc" && password == "svc-pw" {
		return nil
	}
	if pw, ok := f.users[username]; ok && pw == password {
		return nil
	}
	return errors.New("invalid credentials")
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.filter = req.Filter
	return &ldap.SearchResult{Entries: f.entries}, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func newTestAuthenticator(c *fakeConn) *Authenticator {
	a := New(config.LDAP{Enable: true, Address: "ldap://dir", UserName: "cn=svc", Password: "svc-pw", SearchDN: "dc=acme"})
	a.dial = func(string) (conn, error) { return c, nil }
	return a
}

func TestAuthenticate(t *testing.T) {
	c := &fakeConn{
		users:   map[string]string{"uid=pat,dc=acme": "right"},
		entries: []*ldap.Entry{ldap.NewEntry("uid=pat,dc=acme", nil)},
	}
	a := newTestAuthenticator(c)

	assert.NoError(t, a.Authenticate("pat@acme.test", "right"))
	assert.Equal(t, "(mail=pat@acme.test)", c.filter)
	assert.True(t, c.closed)

	assert.Error(t, a.Authenticate("pat@acme.test", "wrong"))
	assert.Error(t, a.Authenticate("pat@acme.test", ""))
}

func TestAuthenticateEscapesFilter(t *testing.T) {
	c := &fakeConn{}
	_ = newTestAuthenticator(c).Authenticate("*)(uid=*", "x")
	assert.Equal(t, `(mail=\2a\29\28uid=\2a)`, c.filter)
}

func TestAuthenticateRequiresSingleEntry(t *testing.T) {
	c := &fakeConn{entries: []*ldap.Entry{
		ldap.NewEntry("uid=a,dc=acme", nil),
		ldap.NewEntry("uid=b,dc=acme", nil),
	}}
	assert.ErrorIs(t, newTestAuthenticator(c).Authenticate("x@acme.test", "pw"), ErrUserNotFound)

	none := &fakeConn{}
	assert.ErrorIs(t, newTestAuthenticator(none).Authenticate("x@acme.test", "pw"), ErrUserNotFound)
}
