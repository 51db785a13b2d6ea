package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// uniqueViolation is the SQLSTATE raised when usuarios.cpf is reused.
	uniqueViolation = "23505"

	insertUser = `INSERT INTO usuarios (cpf, senha, nome, data_nascimento, genero, email, telefone, endereco_completo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id_usuario, criado_em`

	selectUserByCPF = `SELECT id_usuario, cpf, senha, nome, data_nascimento, genero, email, telefone, endereco_completo, criado_em
		FROM usuarios
		WHERE cpf = $1`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts u and fills in its generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, insertUser,
		u.CPF, u.PasswordHash, u.Name, u.BirthDate, u.Gender, u.Email, u.Phone, u.Address)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByCPF, cpf).Scan(
		&u.ID, &u.CPF, &u.PasswordHash, &u.Name, &u.BirthDate,
		&u.Gender, &u.Email, &u.Phone, &u.Address, &u.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// mapError translates driver errors into the common sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return common.ErrorAlreadyExists
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
