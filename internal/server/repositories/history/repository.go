package history

import (
	"context"

	"github.com/dmitrijs2005/prontuario/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.HistoryEntry) (*models.HistoryEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
}
