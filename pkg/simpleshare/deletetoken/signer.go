package deletetoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// TokenLength is the length of a hex encoded token
const TokenLength = sha256.Size * 2

// Generate computes the delete token for filename under secret
func Generate(filename, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(filename))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether token is the delete token for filename under secret.
// The comparison runs in constant time.
func Verify(filename, token, secret string) bool {
	expected := Generate(filename, secret)
	return hmac.Equal([]byte(expected), []byte(token))
}

// Signer generates and validates delete tokens with a fixed secret key
type Signer struct {
	secretKey  []byte
	pathPrefix string
}

// New creates a new Signer with the given options
func New(opts ...Option) *Signer {
	s := &Signer{
		pathPrefix: "/delete",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsEnabled returns true if a secret key is configured
func (s *Signer) IsEnabled() bool {
	return len(s.secretKey) > 0
}

// Generate returns the delete token for name
func (s *Signer) Generate(name string) string {
	return Generate(name, string(s.secretKey))
}

// Verify reports whether token authorizes deleting name
func (s *Signer) Verify(name, token string) bool {
	return s.Validate(name, token) == nil
}

// Validate checks token against name and returns the reason it was rejected
func (s *Signer) Validate(name, token string) error {
	if !s.IsEnabled() {
		return ErrNoSecretKey
	}
	if token == "" {
		return ErrMissingToken
	}
	if !Verify(name, token, string(s.secretKey)) {
		return ErrInvalidToken
	}
	return nil
}

// DeletePath returns the signed delete path for name, e.g.
// /delete/<token>/<name>
func (s *Signer) DeletePath(name string) string {
	prefix := strings.TrimRight(s.pathPrefix, "/")
	return prefix + "/" + s.Generate(name) + "/" + url.PathEscape(name)
}
