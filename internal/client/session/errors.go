package session

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/provider"
)

// ErrAuthentication matches every *AuthError with errors.Is.
var ErrAuthentication = errors.New("authentication failed")

// AuthError is returned by LogIn and SignUp when the provider rejects the
// request or cannot be reached. The provider cause stays reachable through
// errors.Is/As.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthentication
}

// IsTransport reports whether err was caused by the provider being unreachable
// rather than by a rejection.
func IsTransport(err error) bool {
	return errors.Is(err, provider.ErrUnavailable)
}
