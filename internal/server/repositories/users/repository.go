package users

import (
	"context"

	"github.com/dmitrijs2005/prontuario/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByCPF(ctx context.Context, cpf string) (*models.User, error)
}
