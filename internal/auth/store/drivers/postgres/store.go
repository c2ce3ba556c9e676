// Package postgres is the PostgreSQL Store driver. Reads inside a
// transaction lock the account row, which serializes concurrent updates to
// the same account.
package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

// NewStore opens a pgx-backed pool for the given connection URL.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already opened pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx{sqlTx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.RunInTx(ctx, s.Tx, fn)
}

func (s *Store) Accounts() store.Accounts { return &accountsRepo{q: s.db} }

// tx reads with FOR UPDATE, so the rows it touches stay locked until it ends.
type tx struct{ *sql.Tx }

func (t tx) Accounts() store.Accounts { return &accountsRepo{q: t.Tx, lock: true} }
