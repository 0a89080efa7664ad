// Package cli provides the interactive gophauth terminal client.
//
// It wires configuration, the client database, the configured identity
// provider and the session manager, then runs a REPL whose commands are
// routes:
//
//	/login, /signup, /confirm      only while signed out
//	/, /about, /whoami, /logout    only while signed in
//
// Every command passes through an access gate. A denied command redirects,
// to the login flow for signed-out users, and is resumed once the redirect
// leaves the session in a state that allows it. Sign-outs the user did not
// ask for, such as a session revoked from another device, are announced as
// they happen.
//
// See App, Navigate and runREPL for details.
package cli
