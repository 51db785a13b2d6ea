package prescriptions

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {

	query :=
		`INSERT INTO receitas (id_usuario, nome_medicamento, validade, anexo_receita)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id_receita, criado_em
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.MedicationName, p.ExpiresOn, p.Attachment).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// ListByUser returns the prescriptions of userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Prescription, error) {
	query :=
		`SELECT id_receita, id_usuario, nome_medicamento, validade, anexo_receita, criado_em
		 FROM receitas
		 WHERE id_usuario = $1
		 ORDER BY criado_em DESC, id_receita DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Prescription, 0)
	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ID, &p.UserID, &p.MedicationName, &p.ExpiresOn, &p.Attachment, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
