package prescriptions

import (
	"context"

	"github.com/dmitrijs2005/prontuario/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Prescription, error)
}
