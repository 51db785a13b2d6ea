package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/repomanager"
)

// ErrHistoryContentRequired is returned when neither a condition nor an
// allergy is given.
var ErrHistoryContentRequired = fmt.Errorf("%w: condition or allergy required", common.ErrorValidation)

// HistoryInput carries a new history entry. Blank strings count as absent.
type HistoryInput struct {
	UserID    int64
	Condition *string
	Allergy   *string
}

type HistoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewHistoryService(db *sql.DB, m repomanager.RepositoryManager) *HistoryService {
	return &HistoryService{db: db, repomanager: m}
}

// Submit stores a history entry owned by callerID. At least one of
// condition and allergy must be present.
func (s *HistoryService) Submit(ctx context.Context, callerID int64, in HistoryInput) (*models.HistoryEntry, error) {
	condition := nonBlank(in.Condition)
	allergy := nonBlank(in.Allergy)

	if condition == nil && allergy == nil {
		return nil, ErrHistoryContentRequired
	}
	if in.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", common.ErrorValidation)
	}
	if in.UserID != callerID {
		return nil, common.ErrorForbidden
	}

	e := &models.HistoryEntry{UserID: in.UserID, Condition: condition, Allergy: allergy}
	if _, err := s.repomanager.History(s.db).Create(ctx, e); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return e, nil
}

// List returns the history entries owned by userID.
func (s *HistoryService) List(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	items, err := s.repomanager.History(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return items, nil
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
