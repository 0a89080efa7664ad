package config

import (
	"errors"
	"fmt"
	"time"
)

// Identity provider backends.
const (
	ProviderCognito = "cognito"
	ProviderLocal   = "local"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds runtime settings for the gophauth terminal client.
//
// Durations are time.Duration values; RefreshInterval drives the background
// token refresher and RefreshLeeway is how long before expiry it refreshes.
type Config struct {
	Provider     string `env:"GOPHAUTH_PROVIDER"`
	DatabasePath string `env:"GOPHAUTH_DB"`
	LogLevel     string `env:"GOPHAUTH_LOG_LEVEL"`

	LoginPath string `env:"GOPHAUTH_LOGIN_PATH"`
	HomePath  string `env:"GOPHAUTH_HOME_PATH"`

	RefreshInterval time.Duration `env:"GOPHAUTH_REFRESH_INTERVAL"`
	RefreshLeeway   time.Duration `env:"GOPHAUTH_REFRESH_LEEWAY"`

	Cognito CognitoConfig `envPrefix:"GOPHAUTH_COGNITO_"`
	Local   LocalConfig   `envPrefix:"GOPHAUTH_LOCAL_"`
}

// CognitoConfig identifies the user pool and app client.
type CognitoConfig struct {
	Region       string `env:"REGION"`
	UserPoolID   string `env:"USER_POOL_ID"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Endpoint     string `env:"ENDPOINT"`
}

// LocalConfig tunes the offline provider.
type LocalConfig struct {
	AutoConfirm bool          `env:"AUTO_CONFIRM"`
	SessionTTL  time.Duration `env:"SESSION_TTL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Provider = ProviderLocal
	c.DatabasePath = "gophauth.db"
	c.LogLevel = "info"
	c.LoginPath = "/login"
	c.HomePath = "/"
	c.RefreshInterval = time.Minute
	c.RefreshLeeway = 5 * time.Minute
	c.Local.AutoConfirm = true
	c.Local.SessionTTL = 24 * time.Hour
}

// Validate checks the settings the client cannot start without. Cognito
// credentials are validated by the Cognito adapter itself.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderCognito, ProviderLocal:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: empty database path", ErrInvalidConfig)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
