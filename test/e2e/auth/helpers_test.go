package auth_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, OTP scraping and assertions.
 */

const (
	testImageName = "voxauth-test:latest"

	testPassword = "correct horse battery"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// authContainer is a running service plus its container, for log scraping.
type authContainer struct {
	BaseURL   string
	container testcontainers.Container
}

// baseEnv runs with no SMTP relay, so codes are written to the container log,
// and with speech disabled.
func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_DATABASE_FILE":   "/data/auth.db",
		"AUTH_PEPPER_FILE":     "/data/pepper",
		"AUTH_ISSUER":          "voxauth-e2e",
		"AUTH_SESSION_SECRET":  "e2e-session-secret-0123456789abcdef",
		"AUTH_SPEECH_PROVIDER": "disabled",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}
}

// setupAuthContainer starts the service with relaxed HTTP rate limits.
// Tests often make many rapid requests which would otherwise hit the strict
// production limits.
func setupAuthContainer(t *testing.T) (*authContainer, func()) {
	t.Helper()
	return startAuthContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW":     "1m",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	})
}

// setupAuthContainerWithDefaultRateLimits starts the service with DEFAULT rate limits.
// This is specifically for testing that rate limiting actually works.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (*authContainer, func()) {
	t.Helper()
	return startAuthContainer(t, nil)
}

func startAuthContainer(t *testing.T, extraEnv map[string]string) (*authContainer, func()) {
	t.Helper()
	ctx := context.Background()

	env := baseEnv()
	maps.Copy(env, extraEnv)

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	ac := &authContainer{
		BaseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		container: container,
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return ac, cleanup
}

// otpLogLine is the JSON record the log-only mailer writes per code.
type otpLogLine struct {
	Msg  string `json:"msg"`
	To   string `json:"to"`
	Code string `json:"code"`
}

// scrapeOTP returns the most recent code logged for maskedTo, e.g.
// "a***@example.com", or "" if none has been logged yet.
func (a *authContainer) scrapeOTP(maskedTo string) string {
	rc, err := a.container.Logs(context.Background())
	if err != nil {
		return ""
	}
	defer rc.Close()

	code := ""
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		var line otpLogLine
		if json.Unmarshal(sc.Bytes(), &line) != nil {
			continue
		}
		if line.Code != "" && line.To == maskedTo {
			code = line.Code
		}
	}
	return code
}

// latestOTP waits for a code to be logged for maskedTo and returns the most
// recent one. Log delivery is asynchronous, so it polls briefly.
func (a *authContainer) latestOTP(t *testing.T, maskedTo string) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		code = a.scrapeOTP(maskedTo)
		return code != ""
	}, 10*time.Second, 200*time.Millisecond, "no OTP logged for %s", maskedTo)

	return code
}

func signupRequest(email string) authsdk.SignupRequest {
	return authsdk.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Contact:   "+61 400 000 000",
		Password:  testPassword,
	}
}

// verifiedAccount signs up email and confirms it with the logged code.
func verifiedAccount(t *testing.T, ac *authContainer, client *authsdk.SDKClient, email, masked string) *authsdk.SignupResponse {
	t.Helper()
	ctx := t.Context()

	res, err := client.Signup(ctx, signupRequest(email))
	require.NoError(t, err, "Signup should succeed")
	require.NotEmpty(t, res.CorrelationKey)

	_, err = client.VerifyEmail(ctx, res.CorrelationKey, ac.latestOTP(t, masked))
	require.NoError(t, err, "Verification should succeed")

	return res
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertAPIError checks the status and error code of a failed call.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status for %s", err)
	require.Equal(t, code, apiErr.Code)
}
