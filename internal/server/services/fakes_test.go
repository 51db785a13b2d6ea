package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/prontuario/internal/dbx"
	"github.com/dmitrijs2005/prontuario/internal/server/attachments"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	historyrepo "github.com/dmitrijs2005/prontuario/internal/server/repositories/history"
	prescriptionsrepo "github.com/dmitrijs2005/prontuario/internal/server/repositories/prescriptions"
	usersrepo "github.com/dmitrijs2005/prontuario/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	created []*models.User

	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakePrescriptionsRepo struct {
	mu      sync.Mutex
	created []*models.Prescription

	createErr error
	listOut   []models.Prescription
	listErr   error
	listArg   int64
}

func (f *fakePrescriptionsRepo) Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakePrescriptionsRepo) ListByUser(ctx context.Context, userID int64) ([]models.Prescription, error) {
	f.listArg = userID
	return f.listOut, f.listErr
}

type fakeHistoryRepo struct {
	created   []*models.HistoryEntry
	createErr error
	listOut   []models.HistoryEntry
	listErr   error
	listArg   int64
}

func (f *fakeHistoryRepo) Create(ctx context.Context, e *models.HistoryEntry) (*models.HistoryEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, e)
	return e, nil
}

func (f *fakeHistoryRepo) ListByUser(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	f.listArg = userID
	return f.listOut, f.listErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePrescriptionsRepo
	h *fakeHistoryRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Prescriptions(db dbx.DBTX) prescriptionsrepo.Repository {
	return m.p
}
func (m *fakeRepoManager) History(db dbx.DBTX) historyrepo.Repository { return m.h }

// fakeStore records what happened to each staged upload.
type fakeStore struct {
	stageErr  error
	commitErr error
	staged    []*fakeStaged
}

func (s *fakeStore) Stage(ctx context.Context, name string, r io.Reader) (attachments.Staged, error) {
	if s.stageErr != nil {
		return nil, s.stageErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f := &fakeStaged{name: "generated-" + name, body: body, commitErr: s.commitErr}
	s.staged = append(s.staged, f)
	return f, nil
}

type fakeStaged struct {
	name      string
	body      []byte
	commitErr error

	committed bool
	discarded bool
	removed   bool
}

func (f *fakeStaged) Name() string { return f.name }

func (f *fakeStaged) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeStaged) Discard() error {
	f.discarded = true
	return nil
}

func (f *fakeStaged) Remove(ctx context.Context) error {
	if !f.committed {
		return errors.New("remove before commit")
	}
	f.removed = true
	return nil
}

// published reports whether the file is visible after the operation.
func (f *fakeStaged) published() bool { return f.committed && !f.removed }
