package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type subscription struct {
	id uint64
	fn func(State)
}

// Manager is the authentication state machine. It is safe for concurrent use:
// provider events may arrive from background goroutines.
type Manager struct {
	provider provider.Client
	log      logging.Logger

	mu         sync.Mutex
	state      State
	subs       []subscription
	nextSubID  uint64
	pending    []State
	delivering bool

	listenerMu sync.Mutex
	listenerID *provider.ListenerID
}

// NewManager returns a Manager in the initializing state.
func NewManager(p provider.Client, log logging.Logger) *Manager {
	return &Manager{
		provider: p,
		log:      log.With("component", "session"),
		state:    State{InProgress: true},
	}
}

// Start restores the session and then subscribes to provider lifecycle
// events. Call Close when the manager is no longer needed.
func (m *Manager) Start(ctx context.Context) {
	m.RestoreSession(ctx)
	m.listen()
}

// Close removes the provider event listener if one was registered. It is
// safe to call more than once and before Start.
func (m *Manager) Close() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	if m.listenerID == nil {
		return
	}
	m.provider.Remove(provider.AuthChannel, *m.listenerID)
	m.listenerID = nil
}

func (m *Manager) listen() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	if m.listenerID != nil {
		return
	}
	id := m.provider.Listen(provider.AuthChannel, m.handleEvent)
	m.listenerID = &id
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the current user or nil.
func (m *Manager) User() *User {
	return m.State().User
}

// InProgress reports whether session restoration is still outstanding.
func (m *Manager) InProgress() bool {
	return m.State().InProgress
}

// Subscribe registers fn to be called with the new state after every
// transition, in the order transitions are applied. The returned function
// unregisters fn; calling it again does nothing.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// RestoreSession looks up an existing provider session. A valid session
// without a pending challenge authenticates the user; anything else, errors
// included, leaves the manager unauthenticated. InProgress is always cleared.
func (m *Manager) RestoreSession(ctx context.Context) {
	handle, err := m.provider.CurrentAuthenticatedUser(ctx)
	if err != nil {
		m.log.Info(ctx, "no session to restore", "reason", err.Error())
		m.setState(State{})
		return
	}

	if challenge := handle.ChallengeName(); challenge != "" {
		m.log.Info(ctx, "stored session has a pending challenge", "challenge", challenge)
		m.setState(State{})
		return
	}

	user, err := m.resolveUser(ctx, handle)
	if err != nil {
		m.log.Warn(ctx, "failed to resolve restored user", "error", err.Error())
		m.setState(State{})
		return
	}

	m.log.Info(ctx, "session restored", "user_id", user.ID)
	m.setState(State{User: user})
}

// LogIn submits credentials. A challenge is returned in the result and leaves
// the state alone, as does a failure, which is reported as *AuthError. On
// success the freshly resolved user is both stored and returned.
//
// Overlapping calls are not deduplicated.
func (m *Manager) LogIn(ctx context.Context, creds Credentials) (LoginResult, error) {
	handle, err := m.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return LoginResult{}, &AuthError{Op: "log in", Err: err}
	}

	if challenge := handle.ChallengeName(); challenge != "" {
		m.log.Info(ctx, "login requires a challenge", "challenge", challenge)
		return LoginResult{Challenge: challenge}, nil
	}

	user, err := m.resolveUser(ctx, handle)
	if err != nil {
		return LoginResult{}, &AuthError{Op: "log in", Err: err}
	}

	m.log.Info(ctx, "logged in", "user_id", user.ID)
	m.setState(State{User: user})
	return LoginResult{User: user}, nil
}

// LogOut drops the local session before asking the provider to sign out, so
// the state is unauthenticated as soon as LogOut is entered and stays that
// way even if the remote call fails. With global set every session of the
// user is invalidated. The remote outcome is only logged.
func (m *Manager) LogOut(ctx context.Context, global bool) {
	m.setState(State{})

	if err := m.provider.SignOut(ctx, provider.SignOutOptions{Global: global}); err != nil {
		m.log.Warn(ctx, "remote sign-out failed", "global", global, "error", err.Error())
		return
	}
	m.log.Info(ctx, "logged out", "global", global)
}

// SignUp registers a new user. A confirmed user is authenticated and
// returned. An unconfirmed or absent user leaves the manager unauthenticated
// and returns nil; confirmation happens elsewhere. Failures are reported as
// *AuthError with the state unchanged.
func (m *Manager) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	res, err := m.provider.SignUp(ctx, provider.SignUpParams{
		Username: req.Email,
		Password: req.Password,
		Attributes: map[string]string{
			provider.AttrName:    req.Name,
			provider.AttrCountry: req.Country,
		},
	})
	if err != nil {
		return nil, &AuthError{Op: "sign up", Err: err}
	}

	if res == nil || res.User == nil || !res.UserConfirmed {
		m.log.Info(ctx, "signed up, confirmation pending", "email", req.Email)
		m.setState(State{})
		return nil, nil
	}

	user, err := m.resolveUser(ctx, res.User)
	if err != nil {
		return nil, &AuthError{Op: "sign up", Err: err}
	}

	m.log.Info(ctx, "signed up", "user_id", user.ID)
	m.setState(State{User: user})
	return user, nil
}

func (m *Manager) handleEvent(ev provider.Event) {
	ctx := context.Background()

	switch ev.Name {
	case provider.EventSignOut, provider.EventSignInFailure, provider.EventTokenRefreshFailure:
		m.log.Info(ctx, "provider ended the session", "event", ev.Name)
		m.setState(State{})
	default:
		m.log.Debug(ctx, "ignoring provider event", "event", ev.Name)
	}
}

func (m *Manager) resolveUser(ctx context.Context, handle provider.User) (*User, error) {
	attrs, err := m.provider.UserAttributes(ctx, handle)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:      handle.Username(),
		Name:    attrs[provider.AttrName],
		Email:   attrs[provider.AttrEmail],
		Country: attrs[provider.AttrCountry],
		Handle:  handle,
	}, nil
}

// setState applies s and notifies subscribers. Notifications are queued and
// drained by a single goroutine at a time, so subscribers observe transitions
// in the order they were applied even when a subscriber itself triggers one.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.pending = append(m.pending, s)
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true

	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		subs := append([]subscription(nil), m.subs...)
		m.mu.Unlock()

		for _, sub := range subs {
			sub.fn(next)
		}

		m.mu.Lock()
	}

	m.delivering = false
	m.mu.Unlock()
}
