package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail and ErrDuplicateCorrelationKey are raised by the
	// unique constraints at write time, never by a prior lookup.
	ErrDuplicateEmail          = errors.New("store: email already registered")
	ErrDuplicateCorrelationKey = errors.New("store: correlation key already in use")

	// ErrConflict means a conditional write matched no row because another
	// writer got there first.
	ErrConflict = errors.New("store: conflicting update")
)

// Store is implemented by the sqlite and postgres drivers.
type Store interface {
	Accounts() Accounts

	// ApplyMigrations brings the schema up to date from the driver's
	// embedded migrations.
	ApplyMigrations() error

	// Tx starts a read/write transaction. Reads of an account inside it hold
	// that account until Commit or Rollback, so read-decide-write sequences
	// are atomic per account. The caller must end it with one of the two.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx scopes the repositories to one transaction. It deliberately has no way
// to start another.
type Tx interface {
	Accounts() Accounts
	Commit() error
	Rollback() error
}

// RunInTx begins a transaction, runs fn and commits if fn succeeds. Any
// error, or a panic in fn, rolls back.
func RunInTx(ctx context.Context, begin func(context.Context) (Tx, error), fn func(Tx) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type Accounts interface {
	// CreateAccount inserts a new account, including its first OTP challenge.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)
	GetAccountByCorrelationKey(ctx context.Context, key string) (domain.Account, error)

	// UpdateOTPChallenge replaces the outstanding challenge; nil clears it.
	UpdateOTPChallenge(ctx context.Context, id string, c *domain.OTPChallenge, now time.Time) error

	// MarkEmailVerified flips email_verified and clears the challenge in one
	// write. Returns ErrConflict if the account was already verified.
	MarkEmailVerified(ctx context.Context, id string, now time.Time) error

	UpdateBiometricMarker(ctx context.Context, id, marker string, now time.Time) error
	UpdateVoiceReference(ctx context.Context, id, transcript string, now time.Time) error

	// ClearExpiredOTPChallenges drops challenges that expired before now.
	ClearExpiredOTPChallenges(ctx context.Context, now time.Time) (int64, error)

	CountAccounts(ctx context.Context) (int, error)
}
