package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/logging"
	"github.com/dmitrijs2005/prontuario/internal/server/attachments"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/repomanager"
)

// Attachment is an uploaded file as received from the client.
type Attachment struct {
	Name string
	Body io.Reader
}

// PrescriptionInput carries a new prescription. File is nil when the client
// sent no attachment.
type PrescriptionInput struct {
	UserID         int64
	MedicationName string
	ExpiresOn      models.Date
	File           *Attachment
}

type PrescriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       attachments.Store
	logger      logging.Logger
}

func NewPrescriptionService(db *sql.DB, m repomanager.RepositoryManager, store attachments.Store, logger logging.Logger) *PrescriptionService {
	return &PrescriptionService{db: db, repomanager: m, store: store, logger: logger}
}

// Upload stores a prescription owned by callerID together with its optional
// attachment.
//
// The row insert and the attachment commit happen inside one transaction:
// a failure at either step leaves neither a row nor a published file.
func (s *PrescriptionService) Upload(ctx context.Context, callerID int64, in PrescriptionInput) (*models.Prescription, error) {
	in.MedicationName = strings.TrimSpace(in.MedicationName)
	if in.MedicationName == "" || in.UserID <= 0 || in.ExpiresOn.IsZero() {
		return nil, fmt.Errorf("%w: missing required prescription fields", common.ErrorValidation)
	}
	if in.UserID != callerID {
		return nil, common.ErrorForbidden
	}

	p := &models.Prescription{
		UserID:         in.UserID,
		MedicationName: in.MedicationName,
		ExpiresOn:      in.ExpiresOn,
	}

	if in.File == nil {
		if _, err := s.repomanager.Prescriptions(s.db).Create(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		return p, nil
	}

	staged, err := s.store.Stage(ctx, in.File.Name, in.File.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: stage attachment: %v", common.ErrorInternal, err)
	}
	defer func() {
		if err := staged.Discard(); err != nil {
			s.logger.Warn(ctx, "discard staged attachment", "name", staged.Name(), "error", err)
		}
	}()

	p.Attachment = staged.Name()
	committed := false

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Prescriptions(tx).Create(ctx, p); err != nil {
			return err
		}
		if err := staged.Commit(ctx); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		if committed {
			if rmErr := staged.Remove(context.WithoutCancel(ctx)); rmErr != nil {
				s.logger.Error(ctx, "remove orphaned attachment", "name", staged.Name(), "error", rmErr)
			}
		}
		return nil, fmt.Errorf("%w: save prescription: %v", common.ErrorInternal, err)
	}

	return p, nil
}

// List returns the prescriptions owned by userID.
func (s *PrescriptionService) List(ctx context.Context, userID int64) ([]models.Prescription, error) {
	items, err := s.repomanager.Prescriptions(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return items, nil
}
