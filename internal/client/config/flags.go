package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-p string   identity provider: cognito or local
//	-d string   path of the client database
//	-l string   log level
//	-r int      token refresh interval (in seconds)
//	-region, -pool, -client-id   Cognito user pool settings
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// layers (-c/-config) do not break parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-d", "-l", "-r", "-region", "-pool", "-client-id"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Provider, "p", cfg.Provider, "identity provider (cognito or local)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the client database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	refreshInterval := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "token refresh interval (in seconds)")
	fs.StringVar(&cfg.Cognito.Region, "region", cfg.Cognito.Region, "Cognito region")
	fs.StringVar(&cfg.Cognito.UserPoolID, "pool", cfg.Cognito.UserPoolID, "Cognito user pool id")
	fs.StringVar(&cfg.Cognito.ClientID, "client-id", cfg.Cognito.ClientID, "Cognito app client id")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// -r applies only when given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
		}
	})
	return nil
}
