package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

func tokenResponse(s domain.Session) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken: s.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ExpiresAt.Sub(s.IssuedAt) / time.Second),
		ExpiresAt:   s.ExpiresAt,
		AccountID:   s.AccountID,
		Method:      s.Method,
	}
}

type LoginHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Password Login
//	@Description	Exchange an email and password for a one hour session token.
//	@Description	Accounts whose email is not yet verified are refused whatever the password.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, expires_at"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"not_verified"
//	@Router			/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	sess, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "log in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}

type VoiceLoginHandler struct {
	AccountService *service.AccountService
	MaxUploadBytes int64
}

// ServeHTTP godoc
//
//	@Summary		Voice Login
//	@Description	Upload a recording of the enrolled phrase. The transcript must match the enrolled one exactly.
//	@Tags			Sessions
//	@Accept			mpfd
//	@Produce		json
//	@Param			id			path		string					true	"Account ID"
//	@Param			voice_login	formData	file					true	"Audio sample"
//	@Success		200			{object}	authsdk.TokenResponse	"access_token, expires_at"
//	@Failure		401			{object}	authsdk.ErrorResponse	"voice_mismatch"
//	@Failure		404			{object}	authsdk.ErrorResponse	"account_not_found"
//	@Failure		409			{object}	authsdk.ErrorResponse	"voice_not_enrolled"
//	@Failure		502			{object}	authsdk.ErrorResponse	"transcription_failed"
//	@Router			/v1/accounts/{id}/voice-login [post].
func (h *VoiceLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, cleanup, err := parseUpload(w, r, authsdk.FieldVoiceLogin, h.MaxUploadBytes)
	defer cleanup()
	if err != nil {
		badRequest(w, "a voice_login audio file is required")
		return
	}

	sess, err := h.AccountService.VoiceLogin(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeServiceError(w, r, err, "log in by voice")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}
