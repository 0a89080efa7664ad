package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUser struct {
	name      string
	challenge string
}

func (u *stubUser) Username() string      { return u.name }
func (u *stubUser) ChallengeName() string { return u.challenge }

type stubProvider struct {
	provider.Hub

	signInRet provider.User
	signInErr error
	signUpRet *provider.SignUpResult
	signUpErr error

	lastSignIn [2]string
	lastSignUp provider.SignUpParams
	signOuts   []provider.SignOutOptions
	confirmed  []string
}

func (p *stubProvider) SignIn(_ context.Context, username, password string) (provider.User, error) {
	p.lastSignIn = [2]string{username, password}
	return p.signInRet, p.signInErr
}

func (p *stubProvider) SignOut(_ context.Context, opts provider.SignOutOptions) error {
	p.signOuts = append(p.signOuts, opts)
	return nil
}

func (p *stubProvider) SignUp(_ context.Context, params provider.SignUpParams) (*provider.SignUpResult, error) {
	p.lastSignUp = params
	return p.signUpRet, p.signUpErr
}

func (p *stubProvider) CurrentAuthenticatedUser(context.Context) (provider.User, error) {
	return nil, provider.ErrNoCurrentUser
}

func (p *stubProvider) UserAttributes(context.Context, provider.User) (map[string]string, error) {
	return map[string]string{
		provider.AttrName:    "Alice",
		provider.AttrEmail:   "alice@example.com",
		provider.AttrCountry: "LV",
	}, nil
}

type confirmingProvider struct {
	*stubProvider
}

func (p confirmingProvider) ConfirmSignUp(_ context.Context, email string) error {
	p.confirmed = append(p.confirmed, email)
	return nil
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

// newTestApp returns an app whose session finished restoring with no user.
func newTestApp(t *testing.T, p provider.Client) (*App, *bytes.Buffer) {
	t.Helper()
	log := logging.New(io.Discard, "error")
	m := session.NewManager(p, log)

	var out bytes.Buffer
	a := newApp(testConfig(), m, p, strings.NewReader(""), &out, log)

	unsubscribe := m.Subscribe(a.onStateChange())
	t.Cleanup(unsubscribe)

	m.Start(context.Background())
	t.Cleanup(m.Close)
	return a, &out
}

// stubInput feeds answers to text and password prompts in order.
func stubInput(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		require.NotEmpty(t, texts, "unexpected prompt %q", prompt)
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, prompt string) ([]byte, error) {
		require.NotEmpty(t, passwords, "unexpected prompt %q", prompt)
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
}

func TestNavigate_ProtectedRouteRedirectsToLoginAndResumes(t *testing.T) {
	p := &stubProvider{signInRet: &stubUser{name: "alice-id"}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"pw"})

	a.Navigate(context.Background(), "/whoami", nil)

	assert.Equal(t, [2]string{"alice@example.com", "pw"}, p.lastSignIn)
	assert.Contains(t, out.String(), "Welcome, Alice!")
	assert.Contains(t, out.String(), "ID:      alice-id")
	assert.Contains(t, out.String(), "Email:   alice@example.com")
	assert.True(t, a.manager.State().Authenticated())
}

func TestNavigate_FailedLoginDoesNotResume(t *testing.T) {
	p := &stubProvider{signInErr: provider.ErrNotAuthorized}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"bad"})

	a.Navigate(context.Background(), "/whoami", nil)

	assert.Contains(t, out.String(), "Login unsuccessful: incorrect email or password")
	assert.NotContains(t, out.String(), "ID:")
	assert.Nil(t, a.manager.User())
}

func TestNavigate_ChallengeDoesNotResume(t *testing.T) {
	p := &stubProvider{signInRet: &stubUser{name: "alice-id", challenge: provider.ChallengeNewPasswordRequired}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"pw"})

	a.Navigate(context.Background(), "/about", nil)

	assert.Contains(t, out.String(), "NEW_PASSWORD_REQUIRED")
	assert.NotContains(t, out.String(), "provider:")
	assert.Nil(t, a.manager.User())
}

func TestNavigate_GuestRouteRedirectsHomeWhenSignedIn(t *testing.T) {
	p := &stubProvider{signInRet: &stubUser{name: "alice-id"}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"pw"})
	a.Navigate(context.Background(), "/login", nil)
	out.Reset()

	a.Navigate(context.Background(), "/signup", nil)

	assert.Contains(t, out.String(), "Hello, Alice!")
	assert.Nil(t, p.lastSignUp.Attributes, "sign-up never ran")
}

func TestNavigate_PendingWhileRestoring(t *testing.T) {
	p := &stubProvider{}
	log := logging.New(io.Discard, "error")
	var out bytes.Buffer
	a := newApp(testConfig(), session.NewManager(p, log), p, strings.NewReader(""), &out, log)

	a.Navigate(context.Background(), "/whoami", nil)

	assert.Contains(t, out.String(), "Still restoring")
	assert.Empty(t, p.lastSignIn[0])
}

func TestNavigate_Unknown(t *testing.T) {
	a, out := newTestApp(t, &stubProvider{})

	a.Navigate(context.Background(), "/nope", nil)
	assert.Contains(t, out.String(), "Unknown command: /nope")
}

func TestLogOut_UserInitiatedHasNoNotice(t *testing.T) {
	p := &stubProvider{signInRet: &stubUser{name: "alice-id"}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"pw"})
	a.Navigate(context.Background(), "/login", nil)

	a.Navigate(context.Background(), "/logout", []string{"--global"})

	assert.Equal(t, []provider.SignOutOptions{{Global: true}}, p.signOuts)
	assert.Contains(t, out.String(), "Logged out from every device")
	assert.NotContains(t, out.String(), "You have been signed out")
	assert.Nil(t, a.manager.User())
}

func TestForcedSignOutIsAnnounced(t *testing.T) {
	p := &stubProvider{signInRet: &stubUser{name: "alice-id"}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com"}, []string{"pw"})
	a.Navigate(context.Background(), "/login", nil)

	p.DispatchAuth(provider.EventTokenRefreshFailure, "refresh token revoked", nil)

	assert.Contains(t, out.String(), "You have been signed out (alice@example.com)")
	assert.Nil(t, a.manager.User())
}

func TestSignUp_Unconfirmed(t *testing.T) {
	p := &stubProvider{signUpRet: &provider.SignUpResult{User: &stubUser{name: "bob-id"}}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"bob@example.com", "Bob", "EE"}, []string{"secret-pw", "secret-pw"})

	a.Navigate(context.Background(), "signup", nil)
	assert.Contains(t, out.String(), "Unknown command", "routes are matched on full paths")

	out.Reset()
	a.Navigate(context.Background(), "/signup", nil)

	assert.Equal(t, "bob@example.com", p.lastSignUp.Username)
	assert.Equal(t, "secret-pw", p.lastSignUp.Password)
	assert.Equal(t, "Bob", p.lastSignUp.Attributes[provider.AttrName])
	assert.Equal(t, "EE", p.lastSignUp.Attributes[provider.AttrCountry])
	assert.Contains(t, out.String(), "Confirm it before logging in")
	assert.Nil(t, a.manager.User())
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	p := &stubProvider{}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"bob@example.com", "Bob", "EE"}, []string{"one", "two"})

	a.Navigate(context.Background(), "/signup", nil)

	assert.Contains(t, out.String(), "Passwords do not match")
	assert.Empty(t, p.lastSignUp.Username)
}

func TestSignUp_Confirmed(t *testing.T) {
	p := &stubProvider{signUpRet: &provider.SignUpResult{User: &stubUser{name: "alice-id"}, UserConfirmed: true}}
	a, out := newTestApp(t, p)
	stubInput(t, []string{"alice@example.com", "Alice", "LV"}, []string{"pw-pw-pw", "pw-pw-pw"})

	a.Navigate(context.Background(), "/signup", nil)

	assert.Contains(t, out.String(), "Account created. Welcome, Alice!")
	assert.True(t, a.manager.State().Authenticated())
}

func TestConfirmRoute(t *testing.T) {
	a, _ := newTestApp(t, &stubProvider{})
	_, ok := a.routes["/confirm"]
	assert.False(t, ok, "only offered by providers that can confirm")

	p := confirmingProvider{&stubProvider{}}
	a, out := newTestApp(t, p)

	a.Navigate(context.Background(), "/confirm", []string{"bob@example.com"})

	assert.Equal(t, []string{"bob@example.com"}, p.confirmed)
	assert.Contains(t, out.String(), "Account confirmed")
}

func TestHelp_ListsAllowedRoutes(t *testing.T) {
	a, out := newTestApp(t, &stubProvider{})

	a.Help()

	assert.Contains(t, out.String(), "/login")
	assert.Contains(t, out.String(), "/signup")
	assert.NotContains(t, out.String(), "/whoami")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "the identity provider is unreachable, check your connection",
		describe(&session.AuthError{Op: "log in", Err: provider.ErrUnavailable}))
	assert.Equal(t, "an account with this email already exists",
		describe(&session.AuthError{Op: "sign up", Err: provider.ErrUserExists}))
}
