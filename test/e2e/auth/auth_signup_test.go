package auth_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestSignupToProfile walks the password path: signup, verify with the
// logged code, biometric marker, login and profile.
func TestSignupToProfile(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)
	ctx := t.Context()

	res := verifiedAccount(t, ac, client, "ada@example.com", "a***@example.com")
	t.Logf("Account %s verified", res.AccountID)

	require.NoError(t, client.RegisterBiometric(ctx, res.CorrelationKey, "fingerprint:v1"))

	session, err := client.Login(ctx, "ada@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, res.AccountID, session.AccountID())
	require.Equal(t, "pwd", session.Method())

	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", profile.Email)
	require.True(t, profile.EmailVerified)
	require.True(t, profile.BiometricEnrolled)
	require.False(t, profile.VoiceEnrolled)
	require.Equal(t, "biometric_enrolled", profile.State)
}

// TestOTPIsSingleUse verifies a code cannot be replayed and a resend
// invalidates the previous one.
func TestOTPIsSingleUse(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)
	ctx := t.Context()

	res, err := client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)
	first := ac.latestOTP(t, "a***@example.com")

	_, err = client.ResendOTP(ctx, res.CorrelationKey)
	require.NoError(t, err)

	var second string
	require.Eventually(t, func() bool {
		second = ac.scrapeOTP("a***@example.com")
		return second != "" && second != first
	}, 10*time.Second, 200*time.Millisecond)

	_, err = client.VerifyEmail(ctx, res.CorrelationKey, first)
	assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeOTPMismatch)

	_, err = client.VerifyEmail(ctx, res.CorrelationKey, second)
	require.NoError(t, err)

	_, err = client.VerifyEmail(ctx, res.CorrelationKey, second)
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyVerified)
}

// TestDuplicateSignup verifies emails are unique regardless of case.
func TestDuplicateSignup(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)

	_, err := client.Signup(t.Context(), signupRequest("ada@example.com"))
	require.NoError(t, err)

	_, err = client.Signup(t.Context(), signupRequest("Ada@Example.com"))
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateEmail)
}

// TestVoiceWithoutProvider verifies voice enrollment reports a transcription
// failure when no speech provider is configured, and the account is left
// without a voice print.
func TestVoiceWithoutProvider(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)
	ctx := t.Context()

	res := verifiedAccount(t, ac, client, "ada@example.com", "a***@example.com")

	_, err := client.EnrollVoice(ctx, res.CorrelationKey, "phrase.pcm", strings.NewReader("open sesame"))
	assertAPIError(t, err, http.StatusBadGateway, authsdk.ErrorCodeTranscriptionFailed)

	_, err = client.VoiceLogin(ctx, res.AccountID, "phrase.pcm", strings.NewReader("open sesame"))
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeVoiceNotEnrolled)
}
