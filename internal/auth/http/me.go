package http

import (
	"net/http"

	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

type ProfileHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Profile
//	@Description	The signed-in account. Credential material, OTP state and the voice transcript are never included.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ProfileResponse	"profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token, token_expired"
//	@Failure		404	{object}	authsdk.ErrorResponse	"account_not_found"
//	@Router			/v1/me [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromContext(r.Context())
	if !ok {
		authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken, "missing session").WriteError(w)
		return
	}

	p, err := h.AccountService.Profile(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err, "load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		AccountID:         p.ID,
		Email:             p.Email,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Contact:           p.Contact,
		EmailVerified:     p.EmailVerified,
		BiometricEnrolled: p.BiometricEnrolled,
		VoiceEnrolled:     p.VoiceEnrolled,
		State:             p.State.String(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	})
}
