// Package gate decides whether a route may be shown for a given
// authentication state.
package gate

import "github.com/dmitrijs2005/gophauth/internal/client/session"

// Default redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Outcome int

const (
	// Pending means restoration is still running: show nothing, do not redirect.
	Pending Outcome = iota
	Allow
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide. Redirect and Referrer are set only for
// Deny; Referrer is the location originally asked for, so the caller can go
// back there once the redirect target is done.
type Decision struct {
	Outcome  Outcome
	Redirect string
	Referrer string
}

// Gate is one polarity of the access decision.
type Gate struct {
	requireUser bool
	redirect    string
}

// Authenticated protects routes that need a user; unauthenticated visitors
// are sent to loginPath.
func Authenticated(loginPath string) Gate {
	return Gate{requireUser: true, redirect: loginPath}
}

// UnauthenticatedOnly protects routes such as login and sign-up; a user who
// is already logged in is sent to homePath.
func UnauthenticatedOnly(homePath string) Gate {
	return Gate{requireUser: false, redirect: homePath}
}

// Decide classifies st for the requested location.
func (g Gate) Decide(st session.State, requested string) Decision {
	if st.InProgress {
		return Decision{Outcome: Pending}
	}
	if (st.User != nil) == g.requireUser {
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: Deny, Redirect: g.redirect, Referrer: requested}
}

// RedirectTarget returns where a denied visitor is sent.
func (g Gate) RedirectTarget() string {
	return g.redirect
}
