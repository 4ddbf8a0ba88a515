// Package deletetoken issues and verifies delete capability tokens.
//
// A token is the lowercase hex HMAC-SHA256 of a stored filename keyed by the
// upload secret. Tokens are never stored: verification recomputes the token
// and compares it in constant time. A token authorizes the deletion of exactly
// the filename it was computed for and does not expire.
//
// # Basic Usage
//
//	signer := deletetoken.New(deletetoken.WithSecretKey(secret))
//	path := signer.DeletePath("aB3x_9Qz.png")
//	// /delete/<64 hex chars>/aB3x_9Qz.png
//
//	if err := signer.Validate(name, token); err != nil {
//	    // respond 401
//	}
package deletetoken
