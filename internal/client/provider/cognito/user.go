package cognito

import "maps"

// User is the provider.User returned by this package.
type User struct {
	username   string
	challenge  string
	session    string
	attributes map[string]string
	tokens     *Tokens
}

func (u *User) Username() string      { return u.username }
func (u *User) ChallengeName() string { return u.challenge }

// ChallengeSession is the opaque session string Cognito expects when the
// challenge is answered.
func (u *User) ChallengeSession() string { return u.session }

// HasSession reports whether the user carries tokens.
func (u *User) HasSession() bool { return u.tokens != nil }

func (u *User) attributesCopy() map[string]string {
	return maps.Clone(u.attributes)
}
