// Package local implements provider.Client without a network: users live in
// the client database and sessions are HS256 tokens signed with a key kept in
// the metadata table.
//
// It is meant for development and demos of the terminal client. It mirrors the
// observable behaviour of a hosted user pool closely enough for the session
// manager: unconfirmed sign-ups, the NEW_PASSWORD_REQUIRED challenge, global
// sign-out and tokenRefresh_failure for sessions that expired or were revoked.
package local
