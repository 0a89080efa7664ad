package provider

// AuthChannel is the channel on which authentication lifecycle events are
// dispatched.
const AuthChannel = "auth"

// Event names dispatched on AuthChannel.
const (
	EventConfigured          = "configured"
	EventSignIn              = "signIn"
	EventSignInFailure       = "signIn_failure"
	EventSignUp              = "signUp"
	EventSignOut             = "signOut"
	EventTokenRefresh        = "tokenRefresh"
	EventTokenRefreshFailure = "tokenRefresh_failure"
)

// Event is a lifecycle notification. Data is event specific: the User for
// signIn/signUp, the error for failures.
type Event struct {
	Channel string
	Name    string
	Message string
	Data    any
}

// Listener receives events. It runs on the dispatching goroutine and must not
// block.
type Listener func(Event)

// ListenerID identifies a registration for Remove. The zero value is never
// issued.
type ListenerID uint64
