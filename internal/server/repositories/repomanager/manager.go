package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/history"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Prescriptions(db dbx.DBTX) prescriptions.Repository
	History(db dbx.DBTX) history.Repository
}
