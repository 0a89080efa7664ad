package gate

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/stretchr/testify/assert"
)

var someone = &session.User{ID: "alice-id", Name: "Alice"}

func TestAuthenticated(t *testing.T) {
	g := Authenticated(LoginPath)

	tests := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{
			name:  "unauthenticated is sent to login with referrer",
			state: session.State{},
			want:  Decision{Outcome: Deny, Redirect: "/login", Referrer: "/about"},
		},
		{
			name:  "authenticated is allowed",
			state: session.State{User: someone},
			want:  Decision{Outcome: Allow},
		},
		{
			name:  "in progress without user is pending",
			state: session.State{InProgress: true},
			want:  Decision{Outcome: Pending},
		},
		{
			name:  "in progress with user is pending",
			state: session.State{User: someone, InProgress: true},
			want:  Decision{Outcome: Pending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decide(tt.state, "/about"))
		})
	}
}

func TestUnauthenticatedOnly(t *testing.T) {
	g := UnauthenticatedOnly(HomePath)

	tests := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{
			name:  "authenticated is sent home",
			state: session.State{User: someone},
			want:  Decision{Outcome: Deny, Redirect: "/", Referrer: "/login"},
		},
		{
			name:  "unauthenticated is allowed",
			state: session.State{},
			want:  Decision{Outcome: Allow},
		},
		{
			name:  "in progress is pending",
			state: session.State{InProgress: true},
			want:  Decision{Outcome: Pending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decide(tt.state, "/login"))
		})
	}
}

func TestCustomRedirectTargets(t *testing.T) {
	assert.Equal(t, "/signin", Authenticated("/signin").RedirectTarget())
	assert.Equal(t, "/dashboard", UnauthenticatedOnly("/dashboard").RedirectTarget())

	d := Authenticated("/signin").Decide(session.State{}, "/settings")
	assert.Equal(t, "/signin", d.Redirect)
	assert.Equal(t, "/settings", d.Referrer)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
