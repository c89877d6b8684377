// Package user defines the identity obtained from the OAuth provider. It is
// never stored server side; it only travels inside the signed session cookie.
package user

// User represents a signed-in visitor.
type User struct {
	// ID is the identifier assigned by the OAuth provider (the GitHub user id).
	ID string

	// ProfilePictureURL is the avatar of the account, if the provider exposes one.
	ProfilePictureURL string
}
