package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/prontuario/internal/filex"
)

const stagingDirName = ".staging"

// LocalStore keeps attachments in a directory on the local filesystem.
// Staged files live in a hidden subdirectory so Commit is a rename.
type LocalStore struct {
	dir     string
	staging string
}

// NewLocalStore creates dir and its staging subdirectory when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	staging, err := filex.EnsureDir(filepath.Join(abs, stagingDirName))
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}
	return &LocalStore{dir: abs, staging: staging}, nil
}

// Dir returns the absolute directory committed files are placed in.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Stage(ctx context.Context, originalName string, r io.Reader) (Staged, error) {
	tmp, err := stageToFile(ctx, s.staging, r)
	if err != nil {
		return nil, err
	}

	return &localStaged{
		name:  filex.GeneratedName(originalName),
		tmp:   tmp,
		store: s,
	}, nil
}

type localStaged struct {
	name  string
	tmp   string
	store *LocalStore
}

func (f *localStaged) Name() string { return f.name }

func (f *localStaged) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(f.tmp, f.finalPath()); err != nil {
		return fmt.Errorf("commit attachment: %w", err)
	}
	return nil
}

func (f *localStaged) Discard() error {
	return removeIfExists(f.tmp)
}

func (f *localStaged) Remove(_ context.Context) error {
	return removeIfExists(f.finalPath())
}

func (f *localStaged) finalPath() string {
	return filepath.Join(f.store.dir, f.name)
}

// stageToFile writes r into a new temporary file under dir and returns its
// path. The partial file is removed on failure.
func stageToFile(ctx context.Context, dir string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write staging file: %w", err)
	}

	return tmp.Name(), nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
