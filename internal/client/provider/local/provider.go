package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	MinPasswordLength = 8
)

// Config tunes the offline provider.
type Config struct {
	// AutoConfirm marks new users confirmed at sign-up.
	AutoConfirm bool
	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration
}

// User is the provider.User returned by this package.
type User struct {
	id        string
	challenge string
}

func (u *User) Username() string      { return u.id }
func (u *User) ChallengeName() string { return u.challenge }

// Provider is the offline provider.Client.
type Provider struct {
	provider.Hub

	db  *sql.DB
	cfg Config
	log logging.Logger
	now func() time.Time

	// mu guards the stored session token.
	mu sync.Mutex
}

func New(db *sql.DB, cfg Config, log logging.Logger) *Provider {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	p := &Provider{
		db:  db,
		cfg: cfg,
		log: log.With("component", "local-provider"),
		now: time.Now,
	}
	p.DispatchAuth(provider.EventConfigured, "", nil)
	return p
}

func (p *Provider) SignIn(ctx context.Context, username, password string) (provider.User, error) {
	user, token, err := p.signIn(ctx, username, password)
	if err != nil {
		p.DispatchAuth(provider.EventSignInFailure, err.Error(), err)
		return nil, err
	}
	if token == "" {
		return user, nil
	}

	p.log.Info(ctx, "signed in", "user_id", user.id)
	p.DispatchAuth(provider.EventSignIn, "", user)
	return user, nil
}

func (p *Provider) signIn(ctx context.Context, username, password string) (*User, string, error) {
	u, err := users.NewSQLiteRepository(p.db).GetByEmail(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, "", fmt.Errorf("sign in: %w", provider.ErrUserNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, "", fmt.Errorf("sign in: %w: incorrect username or password", provider.ErrNotAuthorized)
	}
	if !u.Confirmed {
		return nil, "", fmt.Errorf("sign in: %w", provider.ErrUserNotConfirmed)
	}
	if u.MustChangePassword {
		return &User{id: u.ID, challenge: provider.ChallengeNewPasswordRequired}, "", nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var token string
	err = dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		key, err := signingKey(ctx, tx)
		if err != nil {
			return err
		}
		token, err = generateToken(u.ID, u.TokenVersion, key, p.now(), p.cfg.SessionTTL)
		if err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Set(ctx, keySession, []byte(token))
	})
	if err != nil {
		return nil, "", fmt.Errorf("sign in: %w", err)
	}
	return &User{id: u.ID}, token, nil
}

// SignOut drops the stored session. A global sign-out also bumps the user's
// token version, which invalidates every token issued to them.
func (p *Provider) SignOut(ctx context.Context, opts provider.SignOutOptions) error {
	err := p.signOut(ctx, opts)
	p.DispatchAuth(provider.EventSignOut, "", nil)
	return err
}

func (p *Provider) signOut(ctx context.Context, opts provider.SignOutOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)

		if opts.Global {
			claims, err := p.storedClaims(ctx, tx)
			if err != nil && !errors.Is(err, ErrTokenExpired) && !errors.Is(err, ErrInvalidToken) {
				return err
			}
			if claims != nil {
				if _, err := users.NewSQLiteRepository(tx).BumpTokenVersion(ctx, claims.Subject); err != nil && !errors.Is(err, users.ErrNotFound) {
					return fmt.Errorf("global sign out: %w", err)
				}
			}
		}

		return meta.Delete(ctx, keySession)
	})
}

func (p *Provider) SignUp(ctx context.Context, params provider.SignUpParams) (*provider.SignUpResult, error) {
	if _, err := mail.ParseAddress(params.Username); err != nil {
		return nil, fmt.Errorf("sign up: %w: invalid email %q", provider.ErrInvalidParameter, params.Username)
	}
	if len(params.Password) < MinPasswordLength {
		return nil, fmt.Errorf("sign up: %w: password must have at least %d characters", provider.ErrInvalidParameter, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	u := &users.User{
		ID:           uuid.NewString(),
		Email:        params.Username,
		PasswordHash: hash,
		Name:         params.Attributes[provider.AttrName],
		Country:      params.Attributes[provider.AttrCountry],
		Confirmed:    p.cfg.AutoConfirm,
	}
	if err := users.NewSQLiteRepository(p.db).Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrAlreadyExists) {
			return nil, fmt.Errorf("sign up: %w", provider.ErrUserExists)
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user := &User{id: u.ID}
	p.log.Info(ctx, "user registered", "user_id", u.ID, "confirmed", u.Confirmed)
	p.DispatchAuth(provider.EventSignUp, "", user)

	return &provider.SignUpResult{User: user, UserConfirmed: u.Confirmed}, nil
}

// ConfirmSignUp marks the user registered under email as confirmed.
func (p *Provider) ConfirmSignUp(ctx context.Context, email string) error {
	repo := users.NewSQLiteRepository(p.db)

	u, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("confirm sign up: %w", provider.ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("confirm sign up: %w", err)
	}
	return repo.Confirm(ctx, u.ID)
}

// CurrentAuthenticatedUser validates the stored session token. A token that
// expired or was revoked is dropped and reported with tokenRefresh_failure.
func (p *Provider) CurrentAuthenticatedUser(ctx context.Context) (provider.User, error) {
	user, failure, err := p.currentUser(ctx)
	if failure != nil {
		p.log.Warn(ctx, "stored session rejected", "error", failure.Error())
		p.DispatchAuth(provider.EventTokenRefreshFailure, failure.Error(), failure)
		return nil, failure
	}
	return user, err
}

func (p *Provider) currentUser(ctx context.Context) (user *User, failure, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	claims, err := p.storedClaims(ctx, p.db)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrInvalidToken) {
			return nil, p.dropSession(ctx, err), nil
		}
		return nil, nil, fmt.Errorf("current user: %w", err)
	}
	if claims == nil {
		return nil, nil, provider.ErrNoCurrentUser
	}

	u, err := users.NewSQLiteRepository(p.db).GetByID(ctx, claims.Subject)
	if errors.Is(err, users.ErrNotFound) {
		return nil, p.dropSession(ctx, errors.New("user no longer exists")), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("current user: %w", err)
	}
	if u.TokenVersion != claims.Version {
		return nil, p.dropSession(ctx, errors.New("session was revoked")), nil
	}

	return &User{id: u.ID}, nil, nil
}

func (p *Provider) dropSession(ctx context.Context, cause error) error {
	if err := metadata.NewSQLiteRepository(p.db).Delete(ctx, keySession); err != nil {
		p.log.Warn(ctx, "failed to drop session", "error", err.Error())
	}
	return fmt.Errorf("current user: %w: %v", provider.ErrNotAuthorized, cause)
}

// storedClaims returns the claims of the stored token, or nil when there is
// no stored session.
func (p *Provider) storedClaims(ctx context.Context, db dbx.DBTX) (*Claims, error) {
	token, err := metadata.NewSQLiteRepository(db).Get(ctx, keySession)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}

	key, err := signingKey(ctx, db)
	if err != nil {
		return nil, err
	}
	return parseToken(string(token), key, p.now())
}

func (p *Provider) UserAttributes(ctx context.Context, user provider.User) (map[string]string, error) {
	if user == nil {
		return nil, fmt.Errorf("user attributes: %w: nil user", provider.ErrInvalidParameter)
	}

	u, err := users.NewSQLiteRepository(p.db).GetByID(ctx, user.Username())
	if errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("user attributes: %w", provider.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("user attributes: %w", err)
	}

	return map[string]string{
		provider.AttrName:    u.Name,
		provider.AttrEmail:   u.Email,
		provider.AttrCountry: u.Country,
	}, nil
}
