package ports

// Identity bound to an authenticated realtime connection.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
}

// Port: bearer-token verification for realtime connections.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
