package session

import "github.com/dmitrijs2005/gophauth/internal/client/provider"

// User is the authenticated identity. It is never modified after
// construction; each authentication event produces a new value.
type User struct {
	ID      string
	Name    string
	Email   string
	Country string

	// Handle is the provider-side user object the identity was resolved from.
	Handle provider.User
}

// Credentials are the email and password submitted for a login. They are not
// retained after the call.
type Credentials struct {
	Email    string
	Password string
}

// SignUpRequest is a registration request.
type SignUpRequest struct {
	Email    string
	Password string
	Name     string
	Country  string
}

// State is a snapshot of the authentication state. While InProgress is set
// User is not authoritative.
type State struct {
	User       *User
	InProgress bool
}

// Authenticated reports whether the snapshot authoritatively has a user.
func (s State) Authenticated() bool {
	return !s.InProgress && s.User != nil
}

// LoginResult is the outcome of a LogIn that did not fail: either a user or
// the name of a challenge that must be passed first.
type LoginResult struct {
	User      *User
	Challenge string
}

func (r LoginResult) ChallengeRequired() bool {
	return r.Challenge != ""
}
