package service

import "github.com/aussiebroadwan/voxauth/pkg/cryptox"

// KeySource yields correlation keys.
type KeySource interface {
	Generate() (string, error)
}

// CorrelationIssuer mints the opaque key a client uses to continue signup
// before it holds a session. It is not a credential.
type CorrelationIssuer struct {
	// Size is the number of random bytes. Anything under 10 (80 bits)
	// falls back to 16.
	Size int
}

func (c CorrelationIssuer) Generate() (string, error) {
	size := c.Size
	if size < 10 {
		size = cryptox.TokenSize128
	}
	return cryptox.GenerateToken(size)
}
