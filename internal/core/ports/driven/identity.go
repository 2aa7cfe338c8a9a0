package driven

// IdentityVerifier turns a bearer token into the caller's user id.
type IdentityVerifier interface {
	// UserIDFromToken validates token and returns its subject.
	// Invalid or expired tokens wrap domain.ErrUnauthorized.
	UserIDFromToken(token string) (string, error)
}
