package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that login with wrong password is rejected.
func TestInvalidCredentials(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)
	verifiedAccount(t, ac, client, "ada@example.com", "a***@example.com")

	_, err := client.Login(t.Context(), "ada@example.com", "wrong-password")
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	// Unknown addresses look the same as bad passwords.
	_, err = client.Login(t.Context(), "nobody@example.com", testPassword)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	t.Logf("Invalid credentials correctly rejected with 401")
}

// TestUnverifiedLoginRefused verifies the password is never checked before
// the email has been verified.
func TestUnverifiedLoginRefused(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)

	_, err := client.Signup(t.Context(), signupRequest("grace@example.com"))
	require.NoError(t, err)

	_, err = client.Login(t.Context(), "grace@example.com", testPassword)
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeNotVerified)

	_, err = client.Login(t.Context(), "grace@example.com", "wrong-password")
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeNotVerified)
}

// TestInvalidAccessToken verifies that the profile endpoint rejects invalid tokens.
func TestInvalidAccessToken(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)

	invalidSession := client.NewSessionFromToken("invalid-token-12345", "", time.Now().Add(time.Hour))

	_, err := invalidSession.Profile(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	t.Logf("Invalid token correctly rejected with 401")
}
