package cli

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/gophauth/internal/client/gate"
)

const maxRedirects = 4

type route struct {
	gate    gate.Gate
	summary string
	handler func(ctx context.Context, args []string)
}

func (a *App) buildRoutes() map[string]route {
	routes := map[string]route{
		a.config.LoginPath: {gate: a.guestGate, summary: "log in", handler: func(ctx context.Context, _ []string) { a.logIn(ctx) }},
		"/signup":          {gate: a.guestGate, summary: "create an account", handler: a.signUp},
		a.config.HomePath:  {gate: a.authGate, summary: "home page", handler: a.home},
		"/about":           {gate: a.authGate, summary: "about this client", handler: a.about},
		"/whoami":          {gate: a.authGate, summary: "show the signed-in user", handler: a.whoami},
		"/logout":          {gate: a.authGate, summary: "log out (--global: every device)", handler: a.logOut},
	}
	if a.confirmer != nil {
		routes["/confirm"] = route{gate: a.guestGate, summary: "confirm a registration", handler: a.confirm}
	}
	return routes
}

// Navigate runs the route at path if its gate allows it. A denied route
// redirects; when the redirect ends in a state that allows the original route,
// for example after a successful login, the original route is resumed.
func (a *App) Navigate(ctx context.Context, path string, args []string) {
	a.navigate(ctx, path, args, 0)
}

func (a *App) navigate(ctx context.Context, path string, args []string, depth int) {
	r, ok := a.routes[path]
	if !ok {
		a.println("Unknown command:", path)
		return
	}
	if depth > maxRedirects {
		a.log.Warn(ctx, "redirect loop", "path", path)
		return
	}

	d := r.gate.Decide(a.manager.State(), path)
	switch d.Outcome {
	case gate.Pending:
		a.println("Still restoring the session, try again in a moment")

	case gate.Allow:
		r.handler(ctx, args)

	case gate.Deny:
		a.log.Debug(ctx, "route denied", "path", path, "redirect", d.Redirect)
		a.navigate(ctx, d.Redirect, nil, depth+1)

		if a.allowed(d.Referrer) {
			a.navigate(ctx, d.Referrer, args, depth+1)
		}
	}
}

func (a *App) allowed(path string) bool {
	r, ok := a.routes[path]
	return ok && r.gate.Decide(a.manager.State(), path).Outcome == gate.Allow
}

// Help lists the routes the current state allows.
func (a *App) Help() {
	paths := make([]string, 0, len(a.routes))
	for p := range a.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	a.println("Available commands:")
	for _, p := range paths {
		if a.allowed(p) {
			a.printf("  %-10s %s\n", p, a.routes[p].summary)
		}
	}
	a.printf("  %-10s %s\n", "exit", "leave the program")
}
