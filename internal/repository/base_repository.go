package repository

import (
	"context"

	"github.com/portfolio-studio/engine/internal/models"
)

// BaseRepository is a typed view over a single content domain.
type BaseRepository[T any] interface {
	Domain() models.Domain
	Get(ctx context.Context) (T, error)
	Put(ctx context.Context, value T) error
}

type baseRepository[T any] struct {
	content ContentRepository
	domain  models.Domain
}

func NewBaseRepository[T any](content ContentRepository, domain models.Domain) BaseRepository[T] {
	return &baseRepository[T]{content: content, domain: domain}
}

func (r *baseRepository[T]) Domain() models.Domain { return r.domain }

func (r *baseRepository[T]) Get(ctx context.Context) (T, error) {
	var out T
	if err := r.content.Load(ctx, r.domain, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (r *baseRepository[T]) Put(ctx context.Context, value T) error {
	return r.content.Store(ctx, r.domain, value)
}

// Repositories groups the typed per-domain repositories.
type Repositories struct {
	PersonalInfo  BaseRepository[models.PersonalInfo]
	Skills        BaseRepository[[]string]
	Experience    BaseRepository[models.Experience]
	Projects      BaseRepository[[]models.Project]
	ContactConfig BaseRepository[models.ContactConfig]
	Resume        BaseRepository[models.ResumeMeta]
}

func NewRepositories(content ContentRepository) *Repositories {
	return &Repositories{
		PersonalInfo:  NewBaseRepository[models.PersonalInfo](content, models.DomainPersonalInfo),
		Skills:        NewBaseRepository[[]string](content, models.DomainSkills),
		Experience:    NewBaseRepository[models.Experience](content, models.DomainExperience),
		Projects:      NewBaseRepository[[]models.Project](content, models.DomainProjects),
		ContactConfig: NewBaseRepository[models.ContactConfig](content, models.DomainContactConfig),
		Resume:        NewBaseRepository[models.ResumeMeta](content, models.DomainResume),
	}
}
