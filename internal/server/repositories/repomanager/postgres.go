// Package repomanager vends PostgreSQL-backed repositories bound to a
// dbx.DBTX and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/server/migrations"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/history"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const gooseDialect = "pgx"

type PostgresRepositoryManager struct {
	migrations fs.FS
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Prescriptions(db dbx.DBTX) prescriptions.Repository {
	return prescriptions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) History(db dbx.DBTX) history.Repository {
	return history.NewPostgresRepository(db)
}

// gooseUpContext is swapped out in tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations brings the usuarios, receitas and historico tables up to the
// latest embedded version. Already applied versions are skipped.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(m.migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{migrations: migrations.Migrations}
}
