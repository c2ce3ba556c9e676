package service

import "errors"

// Business outcomes. The strings double as the wire error codes.
var (
	ErrDuplicateEmail      = errors.New("duplicate_email")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInvalidCredential   = errors.New("invalid_credentials")
	ErrNotVerified         = errors.New("not_verified")
	ErrOTPExpired          = errors.New("otp_expired")
	ErrOTPMismatch         = errors.New("otp_mismatch")
	ErrAlreadyVerified     = errors.New("already_verified")
	ErrDeliveryFailed      = errors.New("delivery_failed")
	ErrTranscriptionFailed = errors.New("transcription_failed")
	ErrVoiceMismatch       = errors.New("voice_mismatch")
	ErrVoiceNotEnrolled    = errors.New("voice_not_enrolled")
	ErrAlreadyEnrolled     = errors.New("already_enrolled")
	ErrTokenInvalid        = errors.New("invalid_token")
	ErrTokenExpired        = errors.New("token_expired")
	ErrTooManyAttempts     = errors.New("too_many_attempts")
	ErrInvalidInput        = errors.New("invalid_request")
)
