package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a session token stays valid after issuance.
const DefaultSessionTTL = time.Hour

// Authentication method references carried in the "amr" claim.
const (
	AMRPassword = "pwd"
	AMRVoice    = "voice"
)

// Claims are the session-token claims. The subject is the account id.
type Claims struct {
	jwt.RegisteredClaims

	// Authentication Methods Reference, e.g. ["pwd"] or ["voice"].
	AMR []string `json:"amr,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for one login event.
func NewSessionClaims(subject, issuer, jti string, amr []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		AMR: amr,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// HasMethod reports whether the token was minted by the given method.
func (c *Claims) HasMethod(amr string) bool {
	return slices.Contains(c.AMR, amr)
}
