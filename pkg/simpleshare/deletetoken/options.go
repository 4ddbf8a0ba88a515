package deletetoken

// Option is a functional option for configuring a Signer
type Option func(*Signer)

// WithSecretKey sets the secret key used for HMAC signing
func WithSecretKey(key string) Option {
	return func(s *Signer) {
		s.secretKey = []byte(key)
	}
}

// WithPathPrefix sets the route prefix used by DeletePath. Default is "/delete".
func WithPathPrefix(prefix string) Option {
	return func(s *Signer) {
		s.pathPrefix = prefix
	}
}
