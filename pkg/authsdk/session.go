package authsdk

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// Session holds a bearer session token. Tokens are not refreshed; once
// Expired reports true the user has to log in again.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	accountID string
	method    string
	expiresAt time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	expiresAt := tok.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return &Session{
		client:    client,
		token:     tok.AccessToken,
		accountID: tok.AccountID,
		method:    tok.Method,
		expiresAt: expiresAt,
	}
}

// NewSessionFromToken wraps a token obtained elsewhere.
func (c *SDKClient) NewSessionFromToken(token, accountID string, expiresAt time.Time) *Session {
	return &Session{client: c, token: token, accountID: accountID, expiresAt: expiresAt}
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// Method is the authentication method the token was minted for, "pwd" or
// "voice".
func (s *Session) Method() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Expired reports whether the token is past its expiry.
func (s *Session) Expired() bool {
	return !time.Now().Before(s.ExpiresAt())
}

// Profile fetches the signed-in account.
func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/v1/me", nil, authHeaders(s.AccessToken(), nil))
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterBiometric sets or replaces the account's biometric marker.
func (s *Session) RegisterBiometric(ctx context.Context, marker string) error {
	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/enroll/biometric", BiometricRequest{
		BiometricData: marker,
	}, s.AccessToken())
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// EnrollVoice sets or replaces the account's voice print.
func (s *Session) EnrollVoice(ctx context.Context, filename string, audio io.Reader) (*VoiceEnrollResponse, error) {
	return s.client.enrollVoice(ctx, nil, filename, audio, s.AccessToken())
}
