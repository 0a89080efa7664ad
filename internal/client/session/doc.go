// Package session holds the client's authentication state and mediates every
// change to it.
//
// A Manager starts in the initializing state (no user, InProgress set),
// restores an existing provider session on Start, and from then on moves
// between authenticated and unauthenticated through LogIn, LogOut, SignUp and
// the provider's lifecycle events (signOut, signIn_failure,
// tokenRefresh_failure), which always force the unauthenticated state.
//
// Consumers read snapshots with State and register for changes with
// Subscribe. Only LogIn and SignUp report errors; restoration, event handling
// and the remote half of LogOut resolve to the unauthenticated state and log
// the cause.
//
// One Manager is created per process and passed explicitly to whoever needs it.
package session
