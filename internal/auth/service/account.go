package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/limiter"
	"github.com/aussiebroadwan/voxauth/internal/auth/mailer"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/pkg/cryptox"
	"github.com/aussiebroadwan/voxauth/pkg/idx"
	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// maxKeyAttempts bounds how often signup redraws a colliding correlation key.
const maxKeyAttempts = 3

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Contact   string
}

type SignupResult struct {
	AccountID      string
	CorrelationKey string
	OTPExpiresAt   time.Time
}

// EnrollmentRef names the account an enrollment targets. AccountID comes only
// from a verified session token; CorrelationKey from a client still in signup.
// When both are set the session wins.
type EnrollmentRef struct {
	AccountID      string
	CorrelationKey string
}

// AccountService drives an account from signup through verification,
// optional enrollment and login.
type AccountService struct {
	Store       store.Store
	OTP         *OTPService
	Correlation KeySource
	Voice       *VoiceService
	Sessions    *SessionService
	Mailer      mailer.Sender
	Limiter     limiter.Limiter

	Now   func() time.Time
	NewID idx.Generator
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NormalizeEmail trims, parses and lower-cases a bare address.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return strings.ToLower(addr.Address), nil
}

// Signup creates a pending account and emails its first code. If the mail
// cannot be delivered the account still exists: the result is returned
// together with ErrDeliveryFailed and the client can ask for a resend.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (SignupResult, error) {
	log := slogx.FromContext(ctx)

	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return SignupResult{}, err
	}
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return SignupResult{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if in.Password == "" {
		return SignupResult{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return SignupResult{}, err
	}

	newID := s.NewID
	if newID == nil {
		newID = idx.NewAt
	}

	now := s.now()
	challenge, err := s.OTP.NewChallenge(now)
	if err != nil {
		log.Error("failed to generate otp", slog.Any("error", err))
		return SignupResult{}, err
	}

	account := domain.Account{
		ID:           newID(now).String(),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Contact:      strings.TrimSpace(in.Contact),
		PasswordHash: hash,
		OTP:          &challenge,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	keys := s.Correlation
	if keys == nil {
		keys = CorrelationIssuer{}
	}

	for attempt := 1; ; attempt++ {
		account.CorrelationKey, err = keys.Generate()
		if err != nil {
			log.Error("failed to generate correlation key", slog.Any("error", err))
			return SignupResult{}, err
		}

		err = s.Store.Accounts().CreateAccount(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			log.Info("signup rejected, email taken", slogx.Email("email", email))
			return SignupResult{}, ErrDuplicateEmail
		}
		if errors.Is(err, store.ErrDuplicateCorrelationKey) && attempt < maxKeyAttempts {
			log.Warn("correlation key collision, redrawing", slog.Int("attempt", attempt))
			continue
		}
		log.Error("failed to create account", slog.Any("error", err))
		return SignupResult{}, err
	}

	log.Info("account created",
		slog.String("account_id", account.ID),
		slogx.Email("email", email),
	)

	res := SignupResult{
		AccountID:      account.ID,
		CorrelationKey: account.CorrelationKey,
		OTPExpiresAt:   challenge.ExpiresAt,
	}

	if err := s.Mailer.SendOTP(ctx, email, challenge.Code); err != nil {
		log.Error("failed to deliver signup otp",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return res, nil
}

// VerifyEmail consumes the outstanding code for the account holding key.
func (s *AccountService) VerifyEmail(ctx context.Context, correlationKey, code string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if correlationKey == "" || strings.TrimSpace(code) == "" {
		return domain.Account{}, fmt.Errorf("%w: correlation_key and otp are required", ErrInvalidInput)
	}
	if err := s.allow(ctx, "otp:"+cryptox.FingerprintToken(correlationKey)); err != nil {
		return domain.Account{}, err
	}

	a, err := s.OTP.Validate(ctx, correlationKey, code)
	if err != nil {
		log.Info("otp rejected", slog.String("reason", err.Error()))
		return domain.Account{}, err
	}

	log.Info("email verified", slog.String("account_id", a.ID))
	return a, nil
}

// ResendOTP replaces the outstanding code of an unverified account and mails
// the new one.
func (s *AccountService) ResendOTP(ctx context.Context, correlationKey string) (domain.OTPChallenge, error) {
	log := slogx.FromContext(ctx)

	if correlationKey == "" {
		return domain.OTPChallenge{}, fmt.Errorf("%w: correlation_key is required", ErrInvalidInput)
	}
	if err := s.allow(ctx, "resend:"+cryptox.FingerprintToken(correlationKey)); err != nil {
		return domain.OTPChallenge{}, err
	}

	a, err := s.Store.Accounts().GetAccountByCorrelationKey(ctx, correlationKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OTPChallenge{}, ErrAccountNotFound
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.OTPChallenge{}, err
	}

	c, err := s.OTP.Issue(ctx, a.ID)
	if err != nil {
		return domain.OTPChallenge{}, err
	}

	if err := s.Mailer.SendOTP(ctx, a.Email, c.Code); err != nil {
		log.Error("failed to deliver reissued otp",
			slog.String("account_id", a.ID),
			slog.Any("error", err),
		)
		return c, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	log.Info("otp reissued", slog.String("account_id", a.ID))
	return c, nil
}

// resolve loads the target of an enrollment. overwrite reports whether the
// caller may replace an existing enrollment, which takes a session.
func resolve(ctx context.Context, accounts store.Accounts, ref EnrollmentRef) (a domain.Account, overwrite bool, err error) {
	switch {
	case ref.AccountID != "":
		a, err = accounts.GetAccountByID(ctx, ref.AccountID)
		overwrite = true
	case ref.CorrelationKey != "":
		a, err = accounts.GetAccountByCorrelationKey(ctx, ref.CorrelationKey)
	default:
		return domain.Account{}, false, fmt.Errorf("%w: session or correlation_key required", ErrInvalidInput)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, false, ErrAccountNotFound
		}
		return domain.Account{}, false, err
	}
	if !a.EmailVerified {
		return domain.Account{}, false, ErrNotVerified
	}
	return a, overwrite, nil
}

// RegisterBiometric records the client-asserted marker. It is stored for
// display only and never consulted by any decision.
func (s *AccountService) RegisterBiometric(ctx context.Context, ref EnrollmentRef, marker string) error {
	log := slogx.FromContext(ctx)

	marker = strings.TrimSpace(marker)
	if marker == "" {
		return fmt.Errorf("%w: biometric_data is required", ErrInvalidInput)
	}

	var accountID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, overwrite, err := resolve(ctx, tx.Accounts(), ref)
		if err != nil {
			return err
		}
		if a.BiometricMarker != "" && !overwrite {
			return ErrAlreadyEnrolled
		}
		accountID = a.ID
		return tx.Accounts().UpdateBiometricMarker(ctx, a.ID, marker, s.now())
	})
	if err != nil {
		return err
	}

	log.Info("biometric marker registered", slog.String("account_id", accountID))
	return nil
}

// EnrollVoice transcribes sample and stores it as the account's voice
// reference.
func (s *AccountService) EnrollVoice(ctx context.Context, ref EnrollmentRef, sample io.Reader) (string, error) {
	log := slogx.FromContext(ctx)

	// Checked up front so bad requests never reach the transcriber; Enroll
	// re-checks under the transaction.
	a, overwrite, err := resolve(ctx, s.Store.Accounts(), ref)
	if err != nil {
		return "", err
	}
	if a.VoiceReference != nil && !overwrite {
		return "", ErrAlreadyEnrolled
	}

	text, err := s.Voice.Enroll(ctx, a.ID, sample, overwrite)
	if err != nil {
		return "", err
	}

	log.Info("voice enrolled", slog.String("account_id", a.ID))
	return text, nil
}

// Login checks an email and password pair. Unverified accounts are refused
// before the password is looked at.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	addr, err := NormalizeEmail(email)
	if err != nil {
		return domain.Session{}, ErrInvalidCredential
	}

	a, err := s.Store.Accounts().GetAccountByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login failed, unknown email", slogx.Email("email", addr))
			return domain.Session{}, ErrInvalidCredential
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.Session{}, err
	}

	if !a.EmailVerified {
		return domain.Session{}, ErrNotVerified
	}

	if err := cryptox.VerifyPassword(password, a.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Info("login failed, bad password", slog.String("account_id", a.ID))
			return domain.Session{}, ErrInvalidCredential
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return domain.Session{}, err
	}

	return s.issue(ctx, a.ID, jwtx.AMRPassword)
}

// VoiceLogin authenticates by spoken passphrase.
func (s *AccountService) VoiceLogin(ctx context.Context, accountID string, sample io.Reader) (domain.Session, error) {
	if accountID == "" {
		return domain.Session{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	ctx = slogx.With(ctx, slog.String("account_id", accountID))
	log := slogx.FromContext(ctx)

	if err := s.allow(ctx, "voice:"+cryptox.FingerprintToken(accountID)); err != nil {
		return domain.Session{}, err
	}

	a, err := s.Voice.Authenticate(ctx, accountID, sample)
	if err != nil {
		log.Info("voice login rejected", slog.String("reason", err.Error()))
		return domain.Session{}, err
	}

	return s.issue(ctx, a.ID, jwtx.AMRVoice)
}

// Profile returns the account as its owner may see it.
func (s *AccountService) Profile(ctx context.Context, accountID string) (domain.Profile, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrAccountNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch account", slog.Any("error", err))
		return domain.Profile{}, err
	}
	return a.Profile(), nil
}

func (s *AccountService) issue(ctx context.Context, accountID, method string) (domain.Session, error) {
	sess, err := s.Sessions.Issue(accountID, method)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to issue session", slog.Any("error", err))
		return domain.Session{}, err
	}
	slogx.FromContext(ctx).Info("session issued",
		slog.String("account_id", accountID),
		slog.String("method", method),
	)
	return sess, nil
}

// allow charges one attempt against key. A limiter that cannot be reached
// refuses the attempt.
func (s *AccountService) allow(ctx context.Context, key string) error {
	if s.Limiter == nil {
		return nil
	}
	err := s.Limiter.Allow(ctx, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, limiter.ErrLimited):
		slogx.FromContext(ctx).Warn("attempt limit reached")
		return ErrTooManyAttempts
	default:
		slogx.FromContext(ctx).Error("attempt limiter failed", slog.Any("error", err))
		return err
	}
}
