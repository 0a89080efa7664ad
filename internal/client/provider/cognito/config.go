package cognito

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingConfig = errors.New("cognito: missing configuration")

// Config identifies the user pool and app client.
type Config struct {
	Region     string
	UserPoolID string
	ClientID   string

	// ClientSecret is set only for app clients created with a secret.
	ClientSecret string

	// Endpoint overrides the service endpoint, e.g. for cognito-local.
	Endpoint string
}

// Validate reports every required field that is empty.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "region")
	}
	if strings.TrimSpace(c.UserPoolID) == "" {
		missing = append(missing, "user pool id")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "client id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
