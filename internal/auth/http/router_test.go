package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/voxauth/internal/auth/limiter"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
)

func TestSignupVerifyLoginProfile(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, res.AccountID)
	require.NotEmpty(t, res.CorrelationKey)
	require.WithinDuration(t, s.clock.Now().Add(10*time.Minute), res.OTPExpiresAt, time.Second)

	code := s.mailer.Code("ada@example.com")
	require.Len(t, code, 6)

	v, err := s.client.VerifyEmail(ctx, res.CorrelationKey, code)
	require.NoError(t, err)
	require.Equal(t, res.AccountID, v.AccountID)
	require.Equal(t, "email_verified", v.State)

	sess, err := s.client.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, res.AccountID, sess.AccountID())
	require.Equal(t, "pwd", sess.Method())
	require.WithinDuration(t, s.clock.Now().Add(time.Hour), sess.ExpiresAt(), time.Second)

	p, err := sess.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, res.AccountID, p.AccountID)
	require.Equal(t, "ada@example.com", p.Email)
	require.Equal(t, "Ada", p.FirstName)
	require.True(t, p.EmailVerified)
	require.False(t, p.VoiceEnrolled)
	require.Equal(t, "email_verified", p.State)
}

func TestProfileBodyOmitsSecrets(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.verifiedAccount(t, "ada@example.com")

	sess, err := s.client.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/v1/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, leak := range []string{"password", "otp", "correlation", "transcript"} {
		require.NotContains(t, strings.ToLower(string(body)), leak)
	}
}

func TestSignupErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.client.Signup(ctx, signupRequest("ADA@example.com"))
		requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateEmail)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := s.client.Signup(ctx, signupRequest("not-an-email"))
		requireCode(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("missing password", func(t *testing.T) {
		req := signupRequest("grace@example.com")
		req.Password = ""
		_, err := s.client.Signup(ctx, req)
		requireCode(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		resp, err := http.Post(s.url+"/v1/signup", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSignupDeliveryFailureKeepsAccount(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.mailer.SetFailing(true)
	res, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	requireCode(t, err, http.StatusBadGateway, authsdk.ErrorCodeDeliveryFailed)
	require.NotNil(t, res)
	require.NotEmpty(t, res.AccountID)
	require.NotEmpty(t, res.CorrelationKey)

	// Retrying signup is a duplicate; the client must resend instead.
	s.mailer.SetFailing(false)
	_, err = s.client.Signup(ctx, signupRequest("ada@example.com"))
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateEmail)

	resent, err := s.client.ResendOTP(ctx, res.CorrelationKey)
	require.NoError(t, err)
	require.True(t, resent.OTPExpiresAt.After(s.clock.Now()))

	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, s.mailer.Code("ada@example.com"))
	require.NoError(t, err)
}

func TestVerifyErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)
	code := s.mailer.Code("ada@example.com")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, wrong)
	requireCode(t, err, http.StatusBadRequest, authsdk.ErrorCodeOTPMismatch)

	_, err = s.client.VerifyEmail(ctx, "no-such-key", code)
	requireCode(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)

	_, err = s.client.Login(ctx, "ada@example.com", "correct horse battery")
	requireCode(t, err, http.StatusForbidden, authsdk.ErrorCodeNotVerified)

	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, code)
	require.NoError(t, err)

	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, code)
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyVerified)

	_, err = s.client.ResendOTP(ctx, res.CorrelationKey)
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyVerified)
}

func TestVerifyExpiredCode(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)

	s.clock.Advance(11 * time.Minute)
	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, s.mailer.Code("ada@example.com"))
	requireCode(t, err, http.StatusGone, authsdk.ErrorCodeOTPExpired)
}

func TestVerifyTooManyAttempts(t *testing.T) {
	s := newTestServer(t, withLimiter(limiter.NewMemoryLimiter(limiter.Config{MaxAttempts: 2, Window: time.Hour})))
	ctx := context.Background()

	res, err := s.client.Signup(ctx, signupRequest("ada@example.com"))
	require.NoError(t, err)

	for range 2 {
		_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, "999999x")
		require.Error(t, err)
		require.False(t, authsdk.IsCode(err, authsdk.ErrorCodeTooManyAttempts))
	}

	// Even the right code is refused once the budget is spent.
	_, err = s.client.VerifyEmail(ctx, res.CorrelationKey, s.mailer.Code("ada@example.com"))
	requireCode(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeTooManyAttempts)
}

func TestLoginErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.verifiedAccount(t, "ada@example.com")

	_, err := s.client.Login(ctx, "ada@example.com", "wrong password")
	requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	_, err = s.client.Login(ctx, "nobody@example.com", "correct horse battery")
	requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	sess, err := s.client.Login(ctx, " Ada@Example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken())
}

func TestProfileTokenChecks(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	res := s.verifiedAccount(t, "ada@example.com")

	t.Run("missing token", func(t *testing.T) {
		resp, err := http.Get(s.url + "/v1/me")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("forged token", func(t *testing.T) {
		forged := s.client.NewSessionFromToken("not.a.token", res.AccountID, time.Now().Add(time.Hour))
		_, err := forged.Profile(ctx)
		requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		sess, err := s.client.Login(ctx, "ada@example.com", "correct horse battery")
		require.NoError(t, err)

		s.clock.Advance(59 * time.Minute)
		_, err = sess.Profile(ctx)
		require.NoError(t, err)

		s.clock.Advance(2 * time.Minute)
		_, err = sess.Profile(ctx)
		requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeTokenExpired)
	})
}

func TestBiometricEnrollment(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	pending, err := s.client.Signup(ctx, signupRequest("grace@example.com"))
	require.NoError(t, err)
	err = s.client.RegisterBiometric(ctx, pending.CorrelationKey, "fp:abc")
	requireCode(t, err, http.StatusForbidden, authsdk.ErrorCodeNotVerified)

	res := s.verifiedAccount(t, "ada@example.com")

	require.NoError(t, s.client.RegisterBiometric(ctx, res.CorrelationKey, "fp:abc"))

	// Replacing the marker needs a session.
	err = s.client.RegisterBiometric(ctx, res.CorrelationKey, "fp:def")
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyEnrolled)

	sess, err := s.client.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	require.NoError(t, sess.RegisterBiometric(ctx, "fp:def"))

	p, err := sess.Profile(ctx)
	require.NoError(t, err)
	require.True(t, p.BiometricEnrolled)
	require.Equal(t, "biometric_enrolled", p.State)

	err = s.client.RegisterBiometric(ctx, "no-such-key", "fp:abc")
	requireCode(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)
}

func TestVoiceEnrollAndLogin(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	res := s.verifiedAccount(t, "ada@example.com")

	_, err := s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("open sesame"))
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeVoiceNotEnrolled)

	enrolled, err := s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader("open sesame"))
	require.NoError(t, err)
	require.Equal(t, "open sesame", enrolled.Transcript)

	sess, err := s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("open sesame"))
	require.NoError(t, err)
	require.Equal(t, "voice", sess.Method())
	require.Equal(t, res.AccountID, sess.AccountID())

	_, err = s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("open says me"))
	requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeVoiceMismatch)

	_, err = s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("static"))
	requireCode(t, err, http.StatusBadGateway, authsdk.ErrorCodeTranscriptionFailed)

	_, err = s.client.VoiceLogin(ctx, "01J00000000000000000000000", "login.pcm", strings.NewReader("open sesame"))
	requireCode(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)

	p, err := sess.Profile(ctx)
	require.NoError(t, err)
	require.True(t, p.VoiceEnrolled)
	require.Equal(t, "voice_enrolled", p.State)
}

func TestVoiceReenrollment(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	res := s.verifiedAccount(t, "ada@example.com")

	_, err := s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader("open sesame"))
	require.NoError(t, err)

	_, err = s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader("new phrase"))
	requireCode(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyEnrolled)

	sess, err := s.client.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	_, err = sess.EnrollVoice(ctx, "print.pcm", strings.NewReader("new phrase"))
	require.NoError(t, err)

	_, err = s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("open sesame"))
	requireCode(t, err, http.StatusUnauthorized, authsdk.ErrorCodeVoiceMismatch)

	_, err = s.client.VoiceLogin(ctx, res.AccountID, "login.pcm", strings.NewReader("new phrase"))
	require.NoError(t, err)
}

func TestVoiceUploadValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	res := s.verifiedAccount(t, "ada@example.com")

	t.Run("transcription failure", func(t *testing.T) {
		_, err := s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader("static"))
		requireCode(t, err, http.StatusBadGateway, authsdk.ErrorCodeTranscriptionFailed)
	})

	t.Run("sample too large", func(t *testing.T) {
		big := strings.Repeat("a", 2048)
		_, err := s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader(big))
		requireCode(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("empty sample", func(t *testing.T) {
		_, err := s.client.EnrollVoice(ctx, res.CorrelationKey, "print.pcm", strings.NewReader(""))
		requireCode(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("no file part", func(t *testing.T) {
		resp, err := http.Post(s.url+"/v1/enroll/voice", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("neither key nor session", func(t *testing.T) {
		_, err := s.client.EnrollVoice(ctx, "no-such-key", "print.pcm", strings.NewReader("open sesame"))
		requireCode(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)
	})
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("ready", func(t *testing.T) {
		s := newTestServer(t)

		live, err := s.client.GetLiveness(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", live.Status)
		require.Equal(t, "test", live.Version)

		ready, err := s.client.GetReadiness(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", ready.Status)
		require.Equal(t, "ok", ready.Checks.Database)
		require.Equal(t, "ok", ready.Checks.Signer)
		require.Empty(t, ready.Checks.Limiter)
	})

	t.Run("limiter down", func(t *testing.T) {
		s := newTestServer(t, withPingLimiter(func(context.Context) error {
			return errors.New("redis: connection refused")
		}))

		_, err := s.client.GetReadiness(ctx)
		require.Error(t, err)

		resp, err := http.Get(s.url + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"status":"degraded"`)
		require.Contains(t, string(body), "connection refused")
	})
}

func TestSwaggerDoc(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.url + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/v1/signup")
	require.Contains(t, string(body), "Voxauth Identity Service API")
}
