package deletetoken

import "errors"

// Token validation errors
var (
	// ErrNoSecretKey is returned when the signer has no secret key configured
	ErrNoSecretKey = errors.New("deletetoken: no secret key configured")

	// ErrMissingToken is returned when no token was supplied
	ErrMissingToken = errors.New("deletetoken: missing token")

	// ErrInvalidToken is returned when the token does not match the filename
	ErrInvalidToken = errors.New("deletetoken: invalid token")
)

// IsAuthError returns true if the error is a token validation error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNoSecretKey) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken)
}
