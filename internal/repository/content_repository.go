package repository

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/portfolio-studio/engine/internal/models"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/storage"
)

// ContentRepository persists one JSON document per content domain.
type ContentRepository interface {
	// Load decodes the stored unit into dest. It returns CodeNotFound when the unit was never written.
	Load(ctx context.Context, domain models.Domain, dest any) error
	// Store replaces the whole unit. Readers never observe a partial write.
	Store(ctx context.Context, domain models.Domain, value any) error
}

type contentRepository struct {
	fs billy.Filesystem
	// guards fs; memfs is not safe for concurrent use.
	mu sync.RWMutex
}

func NewContentRepository(fs billy.Filesystem) ContentRepository {
	return &contentRepository{fs: fs}
}

// FileName is the document name a domain is stored under.
func FileName(domain models.Domain) string {
	return string(domain) + ".json"
}

func (r *contentRepository) Load(ctx context.Context, domain models.Domain, dest any) error {
	if err := ctx.Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "load canceled")
	}
	r.mu.RLock()
	b, err := util.ReadFile(r.fs, FileName(domain))
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return appErr.New(appErr.CodeNotFound, "content not found").WithMeta("domain", string(domain))
		}
		return appErr.Wrap(err, appErr.CodeInternal, "read content failed").WithMeta("domain", string(domain))
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "decode content failed").WithMeta("domain", string(domain))
	}
	return nil
}

func (r *contentRepository) Store(ctx context.Context, domain models.Domain, value any) error {
	if err := ctx.Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "store canceled")
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "encode content failed").WithMeta("domain", string(domain))
	}
	b = append(b, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := storage.WriteFileAtomic(r.fs, FileName(domain), b, 0o644); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "write content failed").WithMeta("domain", string(domain))
	}
	return nil
}
