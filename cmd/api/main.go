package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/api"
	"github.com/portfolio-studio/engine/internal/api/handlers"
	"github.com/portfolio-studio/engine/internal/repository"
	"github.com/portfolio-studio/engine/internal/services"
	"github.com/portfolio-studio/engine/pkg/config"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/storage"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting portfolio content engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("data_dir", cfg.DataDir),
		zap.String("public_dir", cfg.PublicDir),
	)

	ctx := context.Background()
	dataFS := mustOpen(ctx, log, cfg.DataDir)
	publicFS := mustOpen(ctx, log, cfg.PublicDir)

	var modules *services.ModuleWriter
	if cfg.ModulesDir != "" {
		modules = services.NewModuleWriter(mustOpen(ctx, log, cfg.ModulesDir))
		log.Info("module emission enabled", zap.String("modules_dir", cfg.ModulesDir))
	}

	envPath, err := filepath.Abs(cfg.EnvFile)
	if err != nil {
		log.Fatal("Failed to resolve env file", zap.String("env_file", cfg.EnvFile), zap.Error(err))
	}
	envFS := mustOpen(ctx, log, filepath.Dir(envPath))

	repos := repository.NewRepositories(repository.NewContentRepository(dataFS))
	contentSvc := services.NewContentService(repos, modules)
	resumeSvc := services.NewResumeService(publicFS, cfg.MaxResumeBytes)
	envSvc := services.NewEnvService(envFS, filepath.Base(envPath))

	secret := []byte(cfg.AuthSecret)
	if len(secret) == 0 {
		log.Warn("AUTH_SECRET not set, mutating routes are open")
	}

	router := api.NewRouter(api.Dependencies{
		HMACSecret:     secret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
			"content": probeCheck(dataFS),
			"public":  probeCheck(publicFS),
		}),
		ContentHandler: handlers.NewContentHandler(contentSvc),
		ResumeHandler:  handlers.NewResumeHandler(resumeSvc, cfg.MaxResumeBytes),
		EnvHandler:     handlers.NewEnvHandler(envSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

func mustOpen(ctx context.Context, log *zap.Logger, dir string) billy.Filesystem {
	fs, err := storage.OpenDir(ctx, dir)
	if err != nil {
		log.Fatal("Failed to open storage dir", zap.String("dir", dir), zap.Error(err))
	}
	return fs
}

func probeCheck(fs billy.Filesystem) handlers.ReadinessCheck {
	return func(context.Context) error { return storage.Probe(fs) }
}
