package provider

import "context"

// User is the opaque provider-side user object. A non-empty ChallengeName
// means the provider wants an extra step before it grants a session.
type User interface {
	Username() string
	ChallengeName() string
}

// SignOutOptions controls the scope of a sign-out.
type SignOutOptions struct {
	// Global invalidates every session of the user, not only this device's.
	Global bool
}

// SignUpParams is a registration request. Username is the user's email.
type SignUpParams struct {
	Username   string
	Password   string
	Attributes map[string]string
}

// SignUpResult is what the provider returns for a registration. User may be
// nil.
type SignUpResult struct {
	User          User
	UserConfirmed bool
}

// Client is the identity provider collaborator.
//
// All blocking methods honor context cancellation. Listen and Remove never
// block.
type Client interface {
	SignIn(ctx context.Context, username, password string) (User, error)
	SignOut(ctx context.Context, opts SignOutOptions) error
	SignUp(ctx context.Context, params SignUpParams) (*SignUpResult, error)
	CurrentAuthenticatedUser(ctx context.Context) (User, error)
	UserAttributes(ctx context.Context, user User) (map[string]string, error)

	Listen(channel string, listener Listener) ListenerID
	Remove(channel string, id ListenerID)
}

// Attribute names understood by the session manager.
const (
	AttrName    = "name"
	AttrEmail   = "email"
	AttrCountry = "custom:country"
)

// ChallengeNewPasswordRequired is issued when the user must set a new password.
const ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"
