// Package session defines the authenticated principal attached to a request
// and a static, configuration-driven implementation of it.
package session

import "slices"

// Session is the capability collaborator consulted by the authorization
// interceptor. Implementations must be safe for concurrent use.
type Session interface {
	// UserID returns the id of the authenticated user.
	UserID() string
	// IsAdmin reports whether the user has administrative access.
	IsAdmin() bool
	// CanRead reports whether the session may read property on entities of
	// the given kind.
	CanRead(kind, property string) bool
}

// Wildcard denies every property of a kind when used in Static.Deny.
const Wildcard = "*"

// Static is a Session with a fixed set of denied kind/property pairs.
type Static struct {
	User  string              `yaml:"user"`
	Admin bool                `yaml:"admin"`
	Deny  map[string][]string `yaml:"deny"`
}

var _ Session = (*Static)(nil)

func (s *Static) UserID() string { return s.User }

func (s *Static) IsAdmin() bool { return s.Admin }

func (s *Static) CanRead(kind, property string) bool {
	denied, ok := s.Deny[kind]
	if !ok {
		return true
	}
	return !slices.Contains(denied, Wildcard) && !slices.Contains(denied, property)
}

// Tokens maps bearer tokens to sessions.
type Tokens map[string]*Static

// Lookup returns the session for token.
func (t Tokens) Lookup(token string) (Session, bool) {
	s, ok := t[token]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}
