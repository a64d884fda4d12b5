package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/repository"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
)

// ContentService reads and replaces the persisted content domains.
// Reads never fail: anything that cannot be loaded is served from the default table.
// Writes trust their input and only report storage failures.
type ContentService interface {
	PersonalInfo(ctx context.Context) models.PersonalInfo
	SavePersonalInfo(ctx context.Context, info models.PersonalInfo) error

	Skills(ctx context.Context) []string
	SaveSkills(ctx context.Context, skills []string) error

	Experience(ctx context.Context) models.Experience
	SaveExperience(ctx context.Context, exp models.Experience) error

	Projects(ctx context.Context) []models.Project
	SaveProjects(ctx context.Context, projects []models.Project) error

	ContactConfig(ctx context.Context) models.ContactConfig
	SaveContactConfig(ctx context.Context, cfg models.ContactConfig) error

	Resume(ctx context.Context) models.ResumeMeta
	SaveResume(ctx context.Context, meta models.ResumeMeta) error

	// Export renders every domain's data module from the persisted values.
	Export(ctx context.Context) ([]GeneratedFile, error)
}

type contentService struct {
	repos   *repository.Repositories
	modules *ModuleWriter
}

// NewContentService wires the typed repositories. modules may be nil to disable module emission.
func NewContentService(repos *repository.Repositories, modules *ModuleWriter) ContentService {
	return &contentService{repos: repos, modules: modules}
}

var _ ContentService = (*contentService)(nil)

func (s *contentService) PersonalInfo(ctx context.Context) models.PersonalInfo {
	return readOrDefault(ctx, s.repos.PersonalInfo, models.DefaultPersonalInfo())
}

func (s *contentService) SavePersonalInfo(ctx context.Context, info models.PersonalInfo) error {
	return s.save(ctx, models.DomainPersonalInfo, func() (any, error) {
		return info, s.repos.PersonalInfo.Put(ctx, info)
	})
}

func (s *contentService) Skills(ctx context.Context) []string {
	skills := readOrDefault(ctx, s.repos.Skills, models.DefaultSkills())
	if skills == nil {
		return models.DefaultSkills()
	}
	return skills
}

func (s *contentService) SaveSkills(ctx context.Context, skills []string) error {
	if skills == nil {
		skills = models.DefaultSkills()
	}
	return s.save(ctx, models.DomainSkills, func() (any, error) {
		return skills, s.repos.Skills.Put(ctx, skills)
	})
}

func (s *contentService) Experience(ctx context.Context) models.Experience {
	return readOrDefault(ctx, s.repos.Experience, models.DefaultExperience()).Normalize()
}

func (s *contentService) SaveExperience(ctx context.Context, exp models.Experience) error {
	exp = exp.Normalize()
	return s.save(ctx, models.DomainExperience, func() (any, error) {
		return exp, s.repos.Experience.Put(ctx, exp)
	})
}

func (s *contentService) Projects(ctx context.Context) []models.Project {
	projects := readOrDefault(ctx, s.repos.Projects, models.DefaultProjects())
	if projects == nil {
		return models.DefaultProjects()
	}
	return projects
}

func (s *contentService) SaveProjects(ctx context.Context, projects []models.Project) error {
	collapsed := models.CollapseProjects(projects)
	return s.save(ctx, models.DomainProjects, func() (any, error) {
		return collapsed, s.repos.Projects.Put(ctx, collapsed)
	})
}

func (s *contentService) ContactConfig(ctx context.Context) models.ContactConfig {
	return readOrDefault(ctx, s.repos.ContactConfig, models.DefaultContactConfig()).Normalize()
}

func (s *contentService) SaveContactConfig(ctx context.Context, cfg models.ContactConfig) error {
	cfg = cfg.Normalize()
	return s.save(ctx, models.DomainContactConfig, func() (any, error) {
		return cfg, s.repos.ContactConfig.Put(ctx, cfg)
	})
}

func (s *contentService) Resume(ctx context.Context) models.ResumeMeta {
	return readOrDefault(ctx, s.repos.Resume, models.DefaultResume())
}

func (s *contentService) SaveResume(ctx context.Context, meta models.ResumeMeta) error {
	return s.save(ctx, models.DomainResume, func() (any, error) {
		return meta, s.repos.Resume.Put(ctx, meta)
	})
}

func (s *contentService) Export(ctx context.Context) ([]GeneratedFile, error) {
	logger.L().Info("export modules")
	values := map[models.Domain]any{
		models.DomainPersonalInfo:  s.PersonalInfo(ctx),
		models.DomainSkills:        s.Skills(ctx),
		models.DomainExperience:    s.Experience(ctx),
		models.DomainProjects:      s.Projects(ctx),
		models.DomainContactConfig: s.ContactConfig(ctx),
		models.DomainResume:        s.Resume(ctx),
	}
	out := make([]GeneratedFile, 0, len(values))
	for _, d := range models.AllDomains() {
		f, err := GenerateModule(d, values[d])
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// save runs put and, on success, regenerates the domain module. Emission problems are only logged.
func (s *contentService) save(ctx context.Context, domain models.Domain, put func() (any, error)) error {
	logger.L().Info("save content", zap.String("domain", string(domain)))
	value, err := put()
	if err != nil {
		logger.L().Error("save content failed", zap.String("domain", string(domain)), zap.Error(err))
		if appErr.IsCode(err, appErr.CodeUnavailable) {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "persist content failed").WithMeta("domain", string(domain))
	}
	logger.L().Info("content saved", zap.String("domain", string(domain)))

	if s.modules == nil {
		return nil
	}
	f, err := GenerateModule(domain, value)
	if err == nil {
		err = s.modules.Write(f)
	}
	if err != nil {
		logger.L().Warn("module emission failed", zap.String("domain", string(domain)), zap.Error(err))
	}
	return nil
}

func readOrDefault[T any](ctx context.Context, repo repository.BaseRepository[T], def T) T {
	v, err := repo.Get(ctx)
	if err != nil {
		logger.L().Warn("serving default content",
			zap.String("domain", string(repo.Domain())),
			zap.Bool("never_written", appErr.IsCode(err, appErr.CodeNotFound)),
			zap.Error(err),
		)
		return def
	}
	return v
}
