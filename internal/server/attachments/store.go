// Package attachments stores prescription files. Uploads are first written
// to a staging area and only become visible on Commit, so the caller can tie
// the file to a database transaction.
package attachments

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/prontuario/internal/server/config"
)

// Store accepts uploads into a staging area.
type Store interface {
	// Stage copies r into staging under a freshly generated name that keeps
	// the extension of originalName.
	Stage(ctx context.Context, originalName string, r io.Reader) (Staged, error)
}

// Staged is an upload that has been written but not published yet.
type Staged interface {
	// Name is the generated file name to persist with the record.
	Name() string
	// Commit publishes the file under Name.
	Commit(ctx context.Context) error
	// Discard drops the staging copy. Safe to call after Commit and more
	// than once.
	Discard() error
	// Remove deletes the published file. Used when the surrounding
	// transaction fails after Commit.
	Remove(ctx context.Context) error
}

// New returns the Store selected by c.AttachmentBackend.
func New(ctx context.Context, c *config.Config) (Store, error) {
	switch c.AttachmentBackend {
	case config.AttachmentBackendLocal:
		return NewLocalStore(c.UploadDir)
	case config.AttachmentBackendS3:
		return NewS3Store(ctx, c)
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", c.AttachmentBackend)
	}
}
