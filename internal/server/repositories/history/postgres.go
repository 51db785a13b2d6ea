package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores e. A nil Condition or Allergy is written as NULL.
func (r *PostgresRepository) Create(ctx context.Context, e *models.HistoryEntry) (*models.HistoryEntry, error) {

	query :=
		`INSERT INTO historico (id_usuario, condicao, alergia)
		 VALUES ($1, $2, $3)
		 RETURNING id_historico, criado_em
		 `

	err := r.db.QueryRowContext(ctx, query, e.UserID, e.Condition, e.Allergy).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

// ListByUser returns the history entries of userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	query :=
		`SELECT id_historico, id_usuario, condicao, alergia, criado_em
		 FROM historico
		 WHERE id_usuario = $1
		 ORDER BY criado_em DESC, id_historico DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var (
			e         models.HistoryEntry
			condition sql.NullString
			allergy   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &condition, &allergy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		if condition.Valid {
			e.Condition = &condition.String
		}
		if allergy.Valid {
			e.Allergy = &allergy.String
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
