package driven

// OAuthStateSigner issues and checks the opaque state parameter of the
// authorization handshake. The state binds the callback to a user.
type OAuthStateSigner interface {
	// Sign returns a state value for userID.
	Sign(userID string) (string, error)

	// Verify returns the user id carried by state.
	// Expired, tampered or foreign values wrap domain.ErrInvalidState.
	Verify(state string) (string, error)
}
