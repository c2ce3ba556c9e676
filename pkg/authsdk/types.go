package authsdk

import "time"

// ErrorResponse is the JSON error body. Client code should use APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Signup and email verification
// ============================================================================

// SignupRequest creates a pending account.
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Contact   string `json:"contact,omitempty"`
	Password  string `json:"password"`
}

// SignupResponse identifies the new account. It is also returned alongside a
// delivery_failed error, since the account exists either way.
type SignupResponse struct {
	AccountID      string    `json:"account_id"`
	CorrelationKey string    `json:"correlation_key"`
	OTPExpiresAt   time.Time `json:"otp_expires_at"`
}

// SignupErrorResponse is the 502 body: the error plus the created account.
type SignupErrorResponse struct {
	ErrorResponse
	SignupResponse
}

type VerifyRequest struct {
	CorrelationKey string `json:"correlation_key"`
	OTP            string `json:"otp"`
}

type VerifyResponse struct {
	AccountID string `json:"account_id"`
	State     string `json:"state"`
}

type ResendRequest struct {
	CorrelationKey string `json:"correlation_key"`
}

type ResendResponse struct {
	OTPExpiresAt time.Time `json:"otp_expires_at"`
}

// ============================================================================
// Enrollment
// ============================================================================

// BiometricRequest records the client-asserted biometric marker. The server
// stores it as-is and never verifies it.
type BiometricRequest struct {
	CorrelationKey string `json:"correlation_key,omitempty"`
	BiometricData  string `json:"biometric_data"`
}

type VoiceEnrollResponse struct {
	Transcript string `json:"transcript"`
}

// Multipart field names for audio uploads.
const (
	FieldVoicePrint     = "voice_print"
	FieldVoiceLogin     = "voice_login"
	FieldCorrelationKey = "correlation_key"
)

// ============================================================================
// Sessions and profile
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer session token. There is no refresh token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccountID   string    `json:"account_id"`
	Method      string    `json:"method"`
}

// ProfileResponse is the account as shown to its owner.
type ProfileResponse struct {
	AccountID         string    `json:"account_id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Contact           string    `json:"contact,omitempty"`
	EmailVerified     bool      `json:"email_verified"`
	BiometricEnrolled bool      `json:"biometric_enrolled"`
	VoiceEnrolled     bool      `json:"voice_enrolled"`
	State             string    `json:"state"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`

	// Limiter is omitted when the attempt limiter is in-process.
	Limiter string `json:"limiter,omitempty"`
}
