package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be strings like "30s" or integer nanoseconds.
// Pointer fields distinguish "absent" from "zero".
type JsonConfig struct {
	Provider     *string `json:"provider"`
	DatabasePath *string `json:"database_path"`
	LogLevel     *string `json:"log_level"`
	LoginPath    *string `json:"login_path"`
	HomePath     *string `json:"home_path"`

	RefreshInterval *timex.Duration `json:"refresh_interval"`
	RefreshLeeway   *timex.Duration `json:"refresh_leeway"`

	Cognito *struct {
		Region       string `json:"region"`
		UserPoolID   string `json:"user_pool_id"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		Endpoint     string `json:"endpoint"`
	} `json:"cognito"`

	Local *struct {
		AutoConfirm *bool           `json:"auto_confirm"`
		SessionTTL  *timex.Duration `json:"session_ttl"`
	} `json:"local"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Without
// either flag nothing is loaded.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFile()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Provider, jc.Provider)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LoginPath, jc.LoginPath)
	setString(&cfg.HomePath, jc.HomePath)

	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.RefreshLeeway != nil {
		cfg.RefreshLeeway = jc.RefreshLeeway.Duration
	}

	if c := jc.Cognito; c != nil {
		cfg.Cognito = CognitoConfig{
			Region:       c.Region,
			UserPoolID:   c.UserPoolID,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     c.Endpoint,
		}
	}

	if l := jc.Local; l != nil {
		if l.AutoConfirm != nil {
			cfg.Local.AutoConfirm = *l.AutoConfirm
		}
		if l.SessionTTL != nil {
			cfg.Local.SessionTTL = l.SessionTTL.Duration
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
