package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

type errorMapping struct {
	err    error
	status int
	desc   string
}

// serviceErrors maps business outcomes onto HTTP. Order matters only for
// errors that wrap one another.
var serviceErrors = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, ""},
	{service.ErrDuplicateEmail, http.StatusConflict, "an account with this email already exists"},
	{service.ErrAccountNotFound, http.StatusNotFound, "account not found"},
	{service.ErrInvalidCredential, http.StatusUnauthorized, "invalid email or password"},
	{service.ErrNotVerified, http.StatusForbidden, "email address has not been verified"},
	{service.ErrOTPExpired, http.StatusGone, "the code has expired, request a new one"},
	{service.ErrOTPMismatch, http.StatusBadRequest, "the code does not match"},
	{service.ErrAlreadyVerified, http.StatusConflict, "email address is already verified"},
	{service.ErrDeliveryFailed, http.StatusBadGateway, "the verification email could not be sent"},
	{service.ErrTranscriptionFailed, http.StatusBadGateway, "the voice sample could not be transcribed"},
	{service.ErrVoiceMismatch, http.StatusUnauthorized, "voice sample does not match"},
	{service.ErrVoiceNotEnrolled, http.StatusConflict, "no voice print is enrolled for this account"},
	{service.ErrAlreadyEnrolled, http.StatusConflict, "already enrolled, a session is required to replace it"},
	{service.ErrTokenInvalid, http.StatusUnauthorized, "token verification failed"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, "too many attempts, try again later"},
}

// apiError converts a service error into its wire form. Unknown errors are
// logged and reported as server_error with a generic message.
func apiError(r *http.Request, err error, action string) *authsdk.APIError {
	for _, m := range serviceErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		desc := m.desc
		if desc == "" {
			desc = strings.TrimPrefix(err.Error(), m.err.Error()+": ")
		}
		return authsdk.NewAPIError(m.status, m.err.Error(), desc)
	}

	slogx.FromContext(r.Context()).Error("failed to "+action, "err", err)
	return authsdk.NewAPIError(http.StatusInternalServerError, authsdk.ErrorCodeServerError, "failed to "+action)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	apiError(r, err, action).WriteError(w)
}

func badRequest(w http.ResponseWriter, desc string) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
}
