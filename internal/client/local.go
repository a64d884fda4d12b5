package client

import (
	"context"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/services"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// Local serves the content endpoints in-process, for operators editing a checkout without the API running.
type Local struct {
	svc    services.ContentService
	resume services.ResumeService
	env    services.EnvService
}

func NewLocal(svc services.ContentService) *Local {
	return &Local{svc: svc}
}

// WithResume enables UploadResume and DeleteResume.
func (l *Local) WithResume(rs services.ResumeService) *Local {
	l.resume = rs
	return l
}

// WithEnv enables the GitHub token calls.
func (l *Local) WithEnv(es services.EnvService) *Local {
	l.env = es
	return l
}

func (l *Local) PersonalInfo(ctx context.Context) (models.PersonalInfo, error) {
	return l.svc.PersonalInfo(ctx), nil
}

func (l *Local) Skills(ctx context.Context) ([]string, error) {
	return l.svc.Skills(ctx), nil
}

func (l *Local) Experience(ctx context.Context) (models.Experience, error) {
	return l.svc.Experience(ctx), nil
}

func (l *Local) Projects(ctx context.Context) ([]models.Project, error) {
	return l.svc.Projects(ctx), nil
}

func (l *Local) ContactConfig(ctx context.Context) (models.ContactConfig, error) {
	return l.svc.ContactConfig(ctx), nil
}

func (l *Local) Resume(ctx context.Context) (models.ResumeMeta, error) {
	return l.svc.Resume(ctx), nil
}

func (l *Local) SavePersonalInfo(ctx context.Context, info models.PersonalInfo) error {
	return l.svc.SavePersonalInfo(ctx, info)
}

func (l *Local) SaveSkills(ctx context.Context, skills []string) error {
	return l.svc.SaveSkills(ctx, skills)
}

func (l *Local) SaveExperience(ctx context.Context, exp models.Experience) error {
	return l.svc.SaveExperience(ctx, exp)
}

func (l *Local) SaveProjects(ctx context.Context, projects []models.Project) error {
	return l.svc.SaveProjects(ctx, projects)
}

func (l *Local) SaveContactConfig(ctx context.Context, cfg models.ContactConfig) error {
	return l.svc.SaveContactConfig(ctx, cfg)
}

func (l *Local) SaveResume(ctx context.Context, meta models.ResumeMeta) error {
	return l.svc.SaveResume(ctx, meta)
}

func (l *Local) Export(ctx context.Context) ([]services.GeneratedFile, error) {
	return l.svc.Export(ctx)
}

func (l *Local) UploadResume(ctx context.Context, fileName, contentType string, data []byte) (*services.UploadResult, error) {
	if l.resume == nil {
		return nil, appErr.New(appErr.CodeUnavailable, "resume storage not configured")
	}
	return l.resume.Upload(ctx, fileName, contentType, data)
}

func (l *Local) DeleteResume(ctx context.Context, fileName string) error {
	if l.resume == nil {
		return appErr.New(appErr.CodeUnavailable, "resume storage not configured")
	}
	return l.resume.Delete(ctx, fileName)
}

func (l *Local) SetGitHubToken(ctx context.Context, token string) error {
	if l.env == nil {
		return appErr.New(appErr.CodeUnavailable, "env file not configured")
	}
	return l.env.SetGitHubToken(ctx, token)
}

func (l *Local) GitHubEnabled(ctx context.Context) (bool, error) {
	if l.env == nil {
		return false, nil
	}
	return l.env.GitHubEnabled(ctx), nil
}
