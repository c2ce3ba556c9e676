package domain

import "time"

// VerificationState is derived from an account's recorded proofs.
type VerificationState int

const (
	StatePending VerificationState = iota
	StateEmailVerified
	StateBiometricEnrolled
	StateVoiceEnrolled
)

func (s VerificationState) String() string {
	switch s {
	case StateEmailVerified:
		return "email_verified"
	case StateBiometricEnrolled:
		return "biometric_enrolled"
	case StateVoiceEnrolled:
		return "voice_enrolled"
	default:
		return "pending"
	}
}

// OTPChallenge is an outstanding email passcode. An account without one has
// no active challenge, whether because none was issued or it was consumed.
type OTPChallenge struct {
	Code      string // fixed-width decimal digits
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its expiry at now.
func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type Account struct {
	ID             string
	Email          string // normalized, unique
	FirstName      string
	LastName       string
	Contact        string
	PasswordHash   string // argon2id PHC string, written once
	CorrelationKey string // unique, opaque
	EmailVerified  bool

	OTP *OTPChallenge

	// BiometricMarker is asserted by the client device and never verified
	// server side. Treat it as advisory only.
	BiometricMarker string

	// VoiceReference is the enrollment transcript, stored verbatim.
	VoiceReference *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// State reports the furthest step the account has reached.
func (a Account) State() VerificationState {
	switch {
	case !a.EmailVerified:
		return StatePending
	case a.VoiceReference != nil:
		return StateVoiceEnrolled
	case a.BiometricMarker != "":
		return StateBiometricEnrolled
	default:
		return StateEmailVerified
	}
}

// Profile is the account as shown to its owner: no credential material, no
// OTP state, no voice transcript.
type Profile struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	Contact           string
	EmailVerified     bool
	BiometricEnrolled bool
	VoiceEnrolled     bool
	State             VerificationState
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (a Account) Profile() Profile {
	return Profile{
		ID:                a.ID,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Contact:           a.Contact,
		EmailVerified:     a.EmailVerified,
		BiometricEnrolled: a.BiometricMarker != "",
		VoiceEnrolled:     a.VoiceReference != nil,
		State:             a.State(),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
