package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/pkg/cryptox"
)

// DefaultOTPTTL is how long an emailed code stays valid.
const DefaultOTPTTL = 10 * time.Minute

const (
	otpMin = 100000
	otpMax = 999999
)

// RandomOTP draws a six digit code uniformly from [100000, 999999].
func RandomOTP() (string, error) {
	n, err := cryptox.RandomInRange(otpMin, otpMax)
	if err != nil {
		return "", err
	}
	return otp.DigitsSix.Format(int32(n)), nil
}

// OTPService issues and consumes email passcodes.
type OTPService struct {
	Store store.Store
	TTL   time.Duration

	// Generate and Now are swapped out in tests.
	Generate func() (string, error)
	Now      func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

// NewChallenge draws a fresh code valid from now for TTL.
func (s *OTPService) NewChallenge(now time.Time) (domain.OTPChallenge, error) {
	gen := s.Generate
	if gen == nil {
		gen = RandomOTP
	}
	code, err := gen()
	if err != nil {
		return domain.OTPChallenge{}, fmt.Errorf("generate otp: %w", err)
	}
	if len(code) != otp.DigitsSix.Length() {
		return domain.OTPChallenge{}, fmt.Errorf("generate otp: want %d digits, got %q", otp.DigitsSix.Length(), code)
	}
	return domain.OTPChallenge{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl()),
	}, nil
}

// Issue replaces the account's outstanding challenge with a new one.
// Verified accounts get ErrAlreadyVerified.
func (s *OTPService) Issue(ctx context.Context, accountID string) (domain.OTPChallenge, error) {
	var c domain.OTPChallenge
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if a.EmailVerified {
			return ErrAlreadyVerified
		}

		now := s.now()
		c, err = s.NewChallenge(now)
		if err != nil {
			return err
		}
		return tx.Accounts().UpdateOTPChallenge(ctx, a.ID, &c, now)
	})
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	return c, nil
}

// Validate consumes the challenge for the account holding correlationKey.
// Checks run in a fixed order: existence, expiry, prior verification,
// presence of a challenge, then equality. Success marks the email verified
// and clears the challenge in the same transaction.
func (s *OTPService) Validate(ctx context.Context, correlationKey, submitted string) (domain.Account, error) {
	var out domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByCorrelationKey(ctx, correlationKey)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		now := s.now()
		if a.OTP != nil && a.OTP.Expired(now) {
			return ErrOTPExpired
		}
		if a.EmailVerified {
			return ErrAlreadyVerified
		}
		if a.OTP == nil {
			return ErrOTPExpired
		}

		got := strings.TrimSpace(submitted)
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.OTP.Code)) != 1 {
			return ErrOTPMismatch
		}

		if err := tx.Accounts().MarkEmailVerified(ctx, a.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrAlreadyVerified
			}
			return err
		}

		a.EmailVerified = true
		a.OTP = nil
		a.UpdatedAt = now
		out = a
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return out, nil
}
