package postgres

import (
	"context"

	"github.com/aussiebroadwan/voxauth/internal/auth/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp is a seam so tests can skip touching a real database.
var gooseUp = func(ctx context.Context, s *Store) error {
	return goose.UpContext(ctx, s.db, ".")
}

// ApplyMigrations runs the embedded goose migrations.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseUp(context.Background(), s)
}
