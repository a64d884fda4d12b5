package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/portfolio-studio/engine/internal/client"
	"github.com/portfolio-studio/engine/internal/orchestrator"
	"github.com/portfolio-studio/engine/internal/repository"
	"github.com/portfolio-studio/engine/internal/services"
	"github.com/portfolio-studio/engine/internal/store"
	"github.com/portfolio-studio/engine/pkg/config"
	"github.com/portfolio-studio/engine/pkg/storage"
)

// backend is everything the commands need from the content endpoints. *client.Client and
// *client.Local both satisfy it.
type backend interface {
	store.Reader
	orchestrator.Writer
	Export(ctx context.Context) ([]services.GeneratedFile, error)
	UploadResume(ctx context.Context, fileName, contentType string, data []byte) (*services.UploadResult, error)
	SetGitHubToken(ctx context.Context, token string) error
	GitHubEnabled(ctx context.Context) (bool, error)
}

var (
	_ backend = (*client.Client)(nil)
	_ backend = (*client.Local)(nil)
)

func openRemote(apiURL, token string) backend {
	c := client.New(apiURL)
	c.Token = token
	return c
}

// openLocal wires the services the API would use, from the same configuration.
func openLocal(ctx context.Context) (backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dataFS, err := storage.OpenDir(ctx, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	publicFS, err := storage.OpenDir(ctx, cfg.PublicDir)
	if err != nil {
		return nil, err
	}
	var modules *services.ModuleWriter
	if cfg.ModulesDir != "" {
		modFS, err := storage.OpenDir(ctx, cfg.ModulesDir)
		if err != nil {
			return nil, err
		}
		modules = services.NewModuleWriter(modFS)
	}
	envPath, err := filepath.Abs(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("resolve env file: %w", err)
	}
	envFS, err := storage.OpenDir(ctx, filepath.Dir(envPath))
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(repository.NewContentRepository(dataFS))
	return client.NewLocal(services.NewContentService(repos, modules)).
		WithResume(services.NewResumeService(publicFS, cfg.MaxResumeBytes)).
		WithEnv(services.NewEnvService(envFS, filepath.Base(envPath))), nil
}
