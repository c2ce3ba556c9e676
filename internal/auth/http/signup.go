package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

type SignupHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Sign Up
//	@Description	Create a pending account and email a six digit verification code.
//	@Description	When the email cannot be sent the account still exists: the 502 body carries the correlation key so the client can request a resend.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest		true	"Account details"
//	@Success		201		{object}	authsdk.SignupResponse		"account_id, correlation_key, otp_expires_at"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_request"
//	@Failure		409		{object}	authsdk.ErrorResponse		"duplicate_email"
//	@Failure		502		{object}	authsdk.SignupErrorResponse	"delivery_failed"
//	@Router			/v1/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := h.AccountService.Signup(r.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Contact:   req.Contact,
	})

	body := authsdk.SignupResponse{
		AccountID:      res.AccountID,
		CorrelationKey: res.CorrelationKey,
		OTPExpiresAt:   res.OTPExpiresAt,
	}

	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, body)
	case errors.Is(err, service.ErrDeliveryFailed) && res.CorrelationKey != "":
		apiErr := apiError(r, err, "sign up")
		httpx.WriteJSON(w, apiErr.StatusCode, authsdk.SignupErrorResponse{
			ErrorResponse: authsdk.ErrorResponse{
				Error:            apiErr.Code,
				ErrorDescription: apiErr.Description,
			},
			SignupResponse: body,
		})
	default:
		writeServiceError(w, r, err, "sign up")
	}
}

type VerifyHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Verify Email
//	@Description	Submit the emailed code. Each code works once and only until it expires.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"Correlation key and code"
//	@Success		200		{object}	authsdk.VerifyResponse	"account_id, state"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request, otp_mismatch"
//	@Failure		404		{object}	authsdk.ErrorResponse	"account_not_found"
//	@Failure		409		{object}	authsdk.ErrorResponse	"already_verified"
//	@Failure		410		{object}	authsdk.ErrorResponse	"otp_expired"
//	@Failure		429		{object}	authsdk.ErrorResponse	"too_many_attempts"
//	@Router			/v1/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	a, err := h.AccountService.VerifyEmail(r.Context(), req.CorrelationKey, req.OTP)
	if err != nil {
		writeServiceError(w, r, err, "verify email")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		AccountID: a.ID,
		State:     a.State().String(),
	})
}

type ResendHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Resend Verification Code
//	@Description	Replace the outstanding code with a new one and email it. The old code stops working.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResendRequest	true	"Correlation key"
//	@Success		202		{object}	authsdk.ResendResponse	"otp_expires_at"
//	@Failure		404		{object}	authsdk.ErrorResponse	"account_not_found"
//	@Failure		409		{object}	authsdk.ErrorResponse	"already_verified"
//	@Failure		429		{object}	authsdk.ErrorResponse	"too_many_attempts"
//	@Failure		502		{object}	authsdk.ErrorResponse	"delivery_failed"
//	@Router			/v1/verify/resend [post].
func (h *ResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	c, err := h.AccountService.ResendOTP(r.Context(), req.CorrelationKey)
	if err != nil {
		writeServiceError(w, r, err, "resend code")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.ResendResponse{OTPExpiresAt: c.ExpiresAt})
}
