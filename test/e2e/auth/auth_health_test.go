package auth_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.NotEmpty(t, health.Version)

	t.Logf("Livez endpoint is healthy")
}

// TestReadyzEndpoint verifies the readiness check covers the database and signer.
func TestReadyzEndpoint(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(ac.BaseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)

	t.Logf("Readyz endpoint is healthy")
}

// TestSwaggerDocServed verifies the API description is published.
func TestSwaggerDocServed(t *testing.T) {
	ac, cleanup := setupAuthContainer(t)
	defer cleanup()

	resp, err := http.Get(ac.BaseURL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/v1/accounts/{id}/voice-login")
}
