package domain

// AuthChangeEvent identifies a change in the provider's authentication state
type AuthChangeEvent string

const (
	AuthEventSignedIn       AuthChangeEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthChangeEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthChangeEvent = "TOKEN_REFRESHED"
)

// AuthChangeHandler receives (event, session) pairs from the auth provider.
// Session is nil for SIGNED_OUT.
type AuthChangeHandler func(event AuthChangeEvent, session *Session)
