package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestAccountState(t *testing.T) {
	ref := "open sesame"

	tests := []struct {
		name string
		acct domain.Account
		want domain.VerificationState
	}{
		{"pending", domain.Account{}, domain.StatePending},
		{"pending ignores enrollment", domain.Account{BiometricMarker: "x", VoiceReference: &ref}, domain.StatePending},
		{"verified", domain.Account{EmailVerified: true}, domain.StateEmailVerified},
		{"biometric", domain.Account{EmailVerified: true, BiometricMarker: "fp"}, domain.StateBiometricEnrolled},
		{"voice", domain.Account{EmailVerified: true, VoiceReference: &ref}, domain.StateVoiceEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.acct.State())
		})
	}
}

func TestOTPChallengeExpired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := domain.OTPChallenge{Code: "123456", IssuedAt: issued, ExpiresAt: issued.Add(10 * time.Minute)}

	require.False(t, c.Expired(issued.Add(time.Minute)))
	require.False(t, c.Expired(c.ExpiresAt))
	require.True(t, c.Expired(c.ExpiresAt.Add(time.Millisecond)))
}

func TestProfileHidesSecrets(t *testing.T) {
	ref := "hello"
	acct := domain.Account{
		ID:             "id",
		Email:          "a@x.com",
		PasswordHash:   "$argon2id$...",
		EmailVerified:  true,
		OTP:            &domain.OTPChallenge{Code: "123456"},
		VoiceReference: &ref,
	}

	p := acct.Profile()
	require.Equal(t, "a@x.com", p.Email)
	require.True(t, p.VoiceEnrolled)
	require.False(t, p.BiometricEnrolled)
	require.Equal(t, domain.StateVoiceEnrolled, p.State)
	require.Equal(t, "voice_enrolled", p.State.String())
}
