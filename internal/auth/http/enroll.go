package http

import (
	"net/http"

	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

// enrollmentRef prefers the session subject over a correlation key.
func enrollmentRef(r *http.Request, correlationKey string) service.EnrollmentRef {
	ref := service.EnrollmentRef{CorrelationKey: correlationKey}
	if id, ok := httpx.AccountIDFromContext(r.Context()); ok {
		ref.AccountID = id
	}
	return ref
}

type BiometricHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Register Biometric Marker
//	@Description	Record the marker asserted by the client device. It is advisory: no decision depends on it.
//	@Description	A correlation key may set the first marker; replacing one requires a session token.
//	@Tags			Enrollment
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body	authsdk.BiometricRequest	true	"Marker and optional correlation key"
//	@Success		204
//	@Failure		403	{object}	authsdk.ErrorResponse	"not_verified"
//	@Failure		404	{object}	authsdk.ErrorResponse	"account_not_found"
//	@Failure		409	{object}	authsdk.ErrorResponse	"already_enrolled"
//	@Router			/v1/enroll/biometric [post].
func (h *BiometricHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.BiometricRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := h.AccountService.RegisterBiometric(r.Context(), enrollmentRef(r, req.CorrelationKey), req.BiometricData); err != nil {
		writeServiceError(w, r, err, "register biometric marker")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type VoiceEnrollHandler struct {
	AccountService *service.AccountService
	MaxUploadBytes int64
}

// ServeHTTP godoc
//
//	@Summary		Enroll Voice Print
//	@Description	Upload a recording of the chosen phrase; its transcript becomes the voice reference.
//	@Description	A correlation key may make the first enrollment; replacing one requires a session token.
//	@Tags			Enrollment
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			voice_print		formData	file							true	"Audio sample"
//	@Param			correlation_key	formData	string							false	"Correlation key from signup"
//	@Success		200				{object}	authsdk.VoiceEnrollResponse		"transcript"
//	@Failure		403				{object}	authsdk.ErrorResponse			"not_verified"
//	@Failure		409				{object}	authsdk.ErrorResponse			"already_enrolled"
//	@Failure		502				{object}	authsdk.ErrorResponse			"transcription_failed"
//	@Router			/v1/enroll/voice [post].
func (h *VoiceEnrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, cleanup, err := parseUpload(w, r, authsdk.FieldVoicePrint, h.MaxUploadBytes)
	defer cleanup()
	if err != nil {
		badRequest(w, "a voice_print audio file is required")
		return
	}

	ref := enrollmentRef(r, r.FormValue(authsdk.FieldCorrelationKey))
	text, err := h.AccountService.EnrollVoice(r.Context(), ref, f)
	if err != nil {
		writeServiceError(w, r, err, "enroll voice")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VoiceEnrollResponse{Transcript: text})
}
