package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/pkg/idx"
	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
)

// SessionService mints and checks bearer session tokens. There is no refresh:
// clients log in again once a token expires.
type SessionService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration

	Now   func() time.Time
	NewID idx.Generator
}

// NewSessionService wires an HS256 signer and verifier around secret. The
// verifier shares the service clock.
func NewSessionService(secret []byte, issuer string, ttl time.Duration, now func() time.Time) (*SessionService, error) {
	if now == nil {
		now = time.Now
	}
	signer, err := jwtx.NewHS256Signer(secret)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewHS256Verifier(secret, issuer, now)
	if err != nil {
		return nil, err
	}
	return &SessionService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   issuer,
		TTL:      ttl,
		Now:      now,
		NewID:    idx.NewAt,
	}, nil
}

// Issue signs a token for accountID recording how the user authenticated.
func (s *SessionService) Issue(accountID, method string) (domain.Session, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	newID := s.NewID
	if newID == nil {
		newID = idx.NewAt
	}

	claims := jwtx.NewSessionClaims(accountID, s.Issuer, newID(now).String(), []string{method}, ttl, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session: %w", err)
	}

	return domain.Session{
		Token:     token,
		AccountID: accountID,
		Method:    method,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify returns the token's claims, or ErrTokenExpired / ErrTokenInvalid.
func (s *SessionService) Verify(token string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return claims, nil
}
