package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/gate"
	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/client/provider/cognito"
	"github.com/dmitrijs2005/gophauth/internal/client/provider/local"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/storage"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Confirmer is implemented by providers that can confirm a registration
// without an out-of-band code.
type Confirmer interface {
	ConfirmSignUp(ctx context.Context, email string) error
}

// refresher is implemented by providers that keep their tokens fresh in the
// background.
type refresher interface {
	StartRefresher(ctx context.Context, interval, leeway time.Duration)
}

type App struct {
	config    *config.Config
	manager   *session.Manager
	provider  provider.Client
	confirmer Confirmer
	log       logging.Logger

	authGate  gate.Gate
	guestGate gate.Gate
	routes    map[string]route

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex

	// loggingOut marks sign-outs the user asked for, which need no notice.
	loggingOut atomic.Bool

	closers []func() error
}

// NewApp opens the client database, builds the configured identity provider
// and the session manager on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	p, err := newProvider(ctx, c, db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, session.NewManager(p, log), p, os.Stdin, os.Stdout, log)
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newProvider(ctx context.Context, c *config.Config, db *sql.DB, log logging.Logger) (provider.Client, error) {
	switch c.Provider {
	case config.ProviderCognito:
		return cognito.New(ctx, cognito.Config{
			Region:       c.Cognito.Region,
			UserPoolID:   c.Cognito.UserPoolID,
			ClientID:     c.Cognito.ClientID,
			ClientSecret: c.Cognito.ClientSecret,
			Endpoint:     c.Cognito.Endpoint,
		}, db, log)
	case config.ProviderLocal:
		return local.New(db, local.Config{
			AutoConfirm: c.Local.AutoConfirm,
			SessionTTL:  c.Local.SessionTTL,
		}, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, c.Provider)
	}
}

func newApp(c *config.Config, m *session.Manager, p provider.Client, in io.Reader, out io.Writer, log logging.Logger) *App {
	a := &App{
		config:    c,
		manager:   m,
		provider:  p,
		log:       log,
		authGate:  gate.Authenticated(c.LoginPath),
		guestGate: gate.UnauthenticatedOnly(c.HomePath),
		reader:    bufio.NewReader(in),
		out:       out,
	}
	if conf, ok := p.(Confirmer); ok {
		a.confirmer = conf
	}
	a.routes = a.buildRoutes()
	return a
}

// Run restores the session, starts background token refresh and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.manager.Subscribe(a.onStateChange())
	defer unsubscribe()

	a.manager.Start(ctx)
	defer a.manager.Close()

	if r, ok := a.provider.(refresher); ok {
		go r.StartRefresher(ctx, a.config.RefreshInterval, a.config.RefreshLeeway)
	}

	a.println("Welcome to gophauth (type 'help' for commands)")
	if u := a.manager.User(); u != nil {
		a.printf("Session restored for %s\n", u.Email)
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases resources opened by NewApp.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err.Error())
		}
	}
	a.closers = nil
}

// onStateChange reports sign-outs the user did not ask for, such as a session
// revoked from another device.
func (a *App) onStateChange() func(session.State) {
	var prev *session.User
	return func(s session.State) {
		if prev != nil && s.User == nil && !a.loggingOut.Load() {
			a.printf("\nYou have been signed out (%s).\n", prev.Email)
		}
		prev = s.User
	}
}

func (a *App) status() string {
	st := a.manager.State()
	switch {
	case st.InProgress:
		return "..."
	case st.User != nil:
		return st.User.Email
	default:
		return "guest"
	}
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}
