// Package provider defines the contract between the session manager and a
// remote identity provider.
//
// # Overview
//
// The package provides:
//  1. The Client interface: sign-in, sign-out, sign-up, attribute lookup,
//     current-session retrieval, and listen/remove for lifecycle events.
//  2. Hub, a channel-keyed listener registry that concrete providers embed to
//     satisfy the Listen/Remove half of the contract.
//  3. Sentinel errors every adapter maps its native failures onto.
//
// # Error Handling
//
// Adapters return (possibly wrapped) sentinels so callers can use errors.Is:
// ErrNotAuthorized, ErrUserNotFound, ErrUserNotConfirmed, ErrUserExists,
// ErrInvalidParameter, ErrTooManyRequests, ErrNoCurrentUser, ErrUnavailable.
//
// Concrete implementations live in the cognito and local subpackages.
package provider
