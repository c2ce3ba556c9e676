package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	constraintEmail          = "accounts_email_key"
	constraintCorrelationKey = "accounts_correlation_key_key"
)

const accountColumns = `id, email, first_name, last_name, contact, password_hash, correlation_key,
	email_verified, otp_code, otp_issued_at, otp_expires_at, biometric_marker, voice_reference,
	created_at, updated_at`

type accountsRepo struct {
	q    querier
	lock bool // append FOR UPDATE to reads
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	var code sql.NullString
	var issued, expires sql.NullTime
	if a.OTP != nil {
		code = sql.NullString{String: a.OTP.Code, Valid: true}
		issued = sql.NullTime{Time: a.OTP.IssuedAt, Valid: true}
		expires = sql.NullTime{Time: a.OTP.ExpiresAt, Valid: true}
	}

	var voice sql.NullString
	if a.VoiceReference != nil {
		voice = sql.NullString{String: *a.VoiceReference, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.Email, a.FirstName, a.LastName, a.Contact, a.PasswordHash, a.CorrelationKey,
		a.EmailVerified, code, issued, expires, a.BiometricMarker, voice,
		a.CreatedAt, a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, "id", id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, "email", email)
}

func (r *accountsRepo) GetAccountByCorrelationKey(ctx context.Context, key string) (domain.Account, error) {
	return r.getOne(ctx, "correlation_key", key)
}

func (r *accountsRepo) getOne(ctx context.Context, column string, arg any) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1`
	if r.lock {
		query += ` FOR UPDATE`
	}

	var (
		a               domain.Account
		code, voice     sql.NullString
		issued, expires sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.Contact, &a.PasswordHash, &a.CorrelationKey,
		&a.EmailVerified, &code, &issued, &expires, &a.BiometricMarker, &voice,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("db error: %w", err)
	}

	if code.Valid && expires.Valid {
		a.OTP = &domain.OTPChallenge{
			Code:      code.String,
			IssuedAt:  issued.Time.UTC(),
			ExpiresAt: expires.Time.UTC(),
		}
	}
	if voice.Valid {
		v := voice.String
		a.VoiceReference = &v
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) UpdateOTPChallenge(ctx context.Context, id string, c *domain.OTPChallenge, now time.Time) error {
	var code sql.NullString
	var issued, expires sql.NullTime
	if c != nil {
		code = sql.NullString{String: c.Code, Valid: true}
		issued = sql.NullTime{Time: c.IssuedAt, Valid: true}
		expires = sql.NullTime{Time: c.ExpiresAt, Valid: true}
	}

	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET otp_code = $1, otp_issued_at = $2, otp_expires_at = $3, updated_at = $4
		WHERE id = $5`, code, issued, expires, now, id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) MarkEmailVerified(ctx context.Context, id string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET email_verified = TRUE, otp_code = NULL, otp_issued_at = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2 AND email_verified = FALSE`, now, id)
	return expectRow(res, err, store.ErrConflict)
}

func (r *accountsRepo) UpdateBiometricMarker(ctx context.Context, id, marker string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET biometric_marker = $1, updated_at = $2 WHERE id = $3`,
		marker, now, id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) UpdateVoiceReference(ctx context.Context, id, transcript string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET voice_reference = $1, updated_at = $2 WHERE id = $3`,
		transcript, now, id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) ClearExpiredOTPChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET otp_code = NULL, otp_issued_at = NULL, otp_expires_at = NULL
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func mapConstraint(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintEmail:
			return fmt.Errorf("%w: %v", store.ErrDuplicateEmail, err)
		case constraintCorrelationKey:
			return fmt.Errorf("%w: %v", store.ErrDuplicateCorrelationKey, err)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func expectRow(res sql.Result, err error, none error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
