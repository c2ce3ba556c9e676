package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const accountColumns = `id, email, first_name, last_name, contact, password_hash, correlation_key,
	email_verified, otp_code, otp_issued_at, otp_expires_at, biometric_marker, voice_reference,
	created_at, updated_at`

type accountsRepo struct {
	q querier
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	var code sql.NullString
	var issued, expires sql.NullInt64
	if a.OTP != nil {
		code = sql.NullString{String: a.OTP.Code, Valid: true}
		issued = sql.NullInt64{Int64: toMillis(a.OTP.IssuedAt), Valid: true}
		expires = sql.NullInt64{Int64: toMillis(a.OTP.ExpiresAt), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.FirstName, a.LastName, a.Contact, a.PasswordHash, a.CorrelationKey,
		a.EmailVerified, code, issued, expires, a.BiometricMarker, nullString(a.VoiceReference),
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *accountsRepo) GetAccountByCorrelationKey(ctx context.Context, key string) (domain.Account, error) {
	return r.getOne(ctx, `correlation_key = ?`, key)
}

func (r *accountsRepo) getOne(ctx context.Context, where string, arg any) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) UpdateOTPChallenge(ctx context.Context, id string, c *domain.OTPChallenge, now time.Time) error {
	var code sql.NullString
	var issued, expires sql.NullInt64
	if c != nil {
		code = sql.NullString{String: c.Code, Valid: true}
		issued = sql.NullInt64{Int64: toMillis(c.IssuedAt), Valid: true}
		expires = sql.NullInt64{Int64: toMillis(c.ExpiresAt), Valid: true}
	}

	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET otp_code = ?, otp_issued_at = ?, otp_expires_at = ?, updated_at = ?
		WHERE id = ?`, code, issued, expires, toMillis(now), id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) MarkEmailVerified(ctx context.Context, id string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET email_verified = 1, otp_code = NULL, otp_issued_at = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE id = ? AND email_verified = 0`, toMillis(now), id)
	return expectRow(res, err, store.ErrConflict)
}

func (r *accountsRepo) UpdateBiometricMarker(ctx context.Context, id, marker string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET biometric_marker = ?, updated_at = ? WHERE id = ?`,
		marker, toMillis(now), id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) UpdateVoiceReference(ctx context.Context, id, transcript string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET voice_reference = ?, updated_at = ? WHERE id = ?`,
		transcript, toMillis(now), id)
	return expectRow(res, err, store.ErrNotFound)
}

func (r *accountsRepo) ClearExpiredOTPChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts
		SET otp_code = NULL, otp_issued_at = NULL, otp_expires_at = NULL
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a                 domain.Account
		code, voice       sql.NullString
		issued, expires   sql.NullInt64
		created, modified int64
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.Contact, &a.PasswordHash, &a.CorrelationKey,
		&a.EmailVerified, &code, &issued, &expires, &a.BiometricMarker, &voice,
		&created, &modified,
	)
	if err != nil {
		return domain.Account{}, err
	}

	if code.Valid && expires.Valid {
		a.OTP = &domain.OTPChallenge{
			Code:      code.String,
			IssuedAt:  fromMillis(issued.Int64),
			ExpiresAt: fromMillis(expires.Int64),
		}
	}
	if voice.Valid {
		v := voice.String
		a.VoiceReference = &v
	}
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(modified)
	return a, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique violations into the store's sentinels.
func mapConstraint(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlitedrv.Error
	if !errors.As(err, &se) || se.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return err
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "accounts.email"):
		return fmt.Errorf("%w: %v", store.ErrDuplicateEmail, err)
	case strings.Contains(msg, "accounts.correlation_key"):
		return fmt.Errorf("%w: %v", store.ErrDuplicateCorrelationKey, err)
	default:
		return err
	}
}

func expectRow(res sql.Result, err error, none error) error {
	if err != nil {
		return err
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

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
