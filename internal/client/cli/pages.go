package cli

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
)

func (a *App) home(_ context.Context, _ []string) {
	a.printf("Hello, %s! Type 'help' to see what you can do.\n", displayName(a.manager.User()))
}

func (a *App) about(_ context.Context, _ []string) {
	info := buildinfo.Get()
	a.println("gophauth terminal client")
	a.printf("  version:  %s (%s, %s)\n", info.Version, info.Commit, info.Date)
	a.printf("  provider: %s\n", a.config.Provider)
}

func (a *App) whoami(_ context.Context, _ []string) {
	u := a.manager.User()
	if u == nil {
		return
	}
	a.printf("ID:      %s\n", u.ID)
	a.printf("Name:    %s\n", u.Name)
	a.printf("Email:   %s\n", u.Email)
	a.printf("Country: %s\n", u.Country)
}
