package authsdk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient talks to the voxauth service. It covers the calls made before a
// session exists and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// Signup creates a pending account. When the verification email could not
// be sent the account still exists: the response is returned together with
// a delivery_failed *APIError so the caller can use ResendOTP.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/signup", req, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusBadGateway {
		var body SignupErrorResponse
		derr := decodeJSON(resp, &body, http.StatusBadGateway)
		if derr != nil {
			return nil, derr
		}
		apiErr := &APIError{
			StatusCode:  http.StatusBadGateway,
			Code:        body.Error,
			Description: body.ErrorDescription,
		}
		if body.CorrelationKey == "" {
			return nil, apiErr
		}
		return &body.SignupResponse, apiErr
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail submits the emailed code for the account holding correlationKey.
func (c *SDKClient) VerifyEmail(ctx context.Context, correlationKey, otp string) (*VerifyResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/verify", VerifyRequest{
		CorrelationKey: correlationKey,
		OTP:            otp,
	}, "")
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP asks for a fresh code. The previous code stops working.
func (c *SDKClient) ResendOTP(ctx context.Context, correlationKey string) (*ResendResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/verify/resend", ResendRequest{CorrelationKey: correlationKey}, "")
	if err != nil {
		return nil, err
	}

	var out ResendResponse
	if err := decodeJSON(resp, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterBiometric records the first biometric marker for a verified
// account using its correlation key.
func (c *SDKClient) RegisterBiometric(ctx context.Context, correlationKey, marker string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/enroll/biometric", BiometricRequest{
		CorrelationKey: correlationKey,
		BiometricData:  marker,
	}, "")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// EnrollVoice uploads the first voice print for a verified account using its
// correlation key.
func (c *SDKClient) EnrollVoice(ctx context.Context, correlationKey, filename string, audio io.Reader) (*VoiceEnrollResponse, error) {
	if correlationKey == "" {
		return nil, errors.New("correlation key is required")
	}
	fields := map[string]string{FieldCorrelationKey: correlationKey}
	return c.enrollVoice(ctx, fields, filename, audio, "")
}

func (c *SDKClient) enrollVoice(ctx context.Context, fields map[string]string, filename string, audio io.Reader, token string) (*VoiceEnrollResponse, error) {
	resp, err := c.doMultipart(ctx, "/v1/enroll/voice", fields, FieldVoicePrint, filename, audio, token)
	if err != nil {
		return nil, err
	}

	var out VoiceEnrollResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/login", LoginRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

// VoiceLogin authenticates by speaking the enrolled phrase.
func (c *SDKClient) VoiceLogin(ctx context.Context, accountID, filename string, audio io.Reader) (*Session, error) {
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/voice-login"
	resp, err := c.doMultipart(ctx, path, nil, FieldVoiceLogin, filename, audio, "")
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}
