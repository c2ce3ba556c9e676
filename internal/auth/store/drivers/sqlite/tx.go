package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/voxauth/internal/auth/store"
)

// Tx begins an immediate transaction when the DSN carries _txlock=immediate,
// which DSN always sets. The write lock is then held from the first read.
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

// tx binds the repositories to one *sql.Tx, which supplies Commit and
// Rollback.
type tx struct{ *sql.Tx }

func (t tx) Accounts() store.Accounts { return &accountsRepo{q: t.Tx} }
