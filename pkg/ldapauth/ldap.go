// Package ldapauth checks directory credentials for organizations that sign
// in through LDAP instead of local passwords.
package ldapauth

import (
	"errors"
	"fmt"

	ldap "github.com/go-ldap/ldap/v3"

	"github.com/ppmlab/atlas/pkg/config"
)

var ErrUserNotFound = errors.New("user not found or too many entries returned")

// conn is the part of *ldap.Conn used here.
type conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

type Authenticator struct {
	cfg  config.LDAP
	dial func(addr string) (conn, error)
}

func New(cfg config.LDAP) *Authenticator {
	return &Authenticator{
		cfg: cfg,
		dial: func(addr string) (conn, error) {
			return ldap.DialURL(addr)
		},
	}
}

func (a *Authenticator) Enabled() bool {
	return a.cfg.Enable
}

// Authenticate binds as the service account, finds the entry whose mail
// attribute is email and binds again as that entry with password.
func (a *Authenticator) Authenticate(email, password string) error {
	if password == "" {
		return errors.New("empty password")
	}
	l, err := a.dial(a.cfg.Address)
	if err != nil {
		return fmt.Errorf("dial ldap: %w", err)
	}
	defer l.Close()

	if err := l.Bind(a.cfg.UserName, a.cfg.Password); err != nil {
		return fmt.Errorf("service bind: %w", err)
	}

	searchRequest := ldap.NewSearchRequest(
		a.cfg.SearchDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		fmt.Sprintf("(mail=%s)", ldap.EscapeFilter(email)),
		[]string{"dn"},
		nil,
	)
	searchResult, err := l.Search(searchRequest)
	if err != nil {
		return fmt.Errorf("search %s: %w", email, err)
	}
	if len(searchResult.Entries) != 1 {
		return ErrUserNotFound
	}

	return l.Bind(searchResult.Entries[0].DN, password)
}
