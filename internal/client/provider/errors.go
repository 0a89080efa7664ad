package provider

import "errors"

var (
	// ErrNotAuthorized covers wrong credentials and revoked or expired sessions.
	ErrNotAuthorized    = errors.New("not authorized")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNotConfirmed = errors.New("user not confirmed")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrTooManyRequests  = errors.New("too many requests")

	// ErrNoCurrentUser is returned by CurrentAuthenticatedUser when there is
	// no stored session.
	ErrNoCurrentUser = errors.New("no current user")

	// ErrUnavailable marks transport failures: the provider could not be reached.
	ErrUnavailable = errors.New("identity provider unavailable")
)
