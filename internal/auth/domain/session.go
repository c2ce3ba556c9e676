package domain

import "time"

// Session is a freshly issued bearer token.
type Session struct {
	Token     string
	AccountID string
	Method    string // "pwd" or "voice"
	IssuedAt  time.Time
	ExpiresAt time.Time
}
