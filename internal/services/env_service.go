package services

import (
	"context"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/storage"
)

// GitHubTokenKey is the env key read by the GitHub stats integration.
const GitHubTokenKey = "GITHUB_TOKEN"

const envTemplate = `# Portfolio configuration

# GitHub stats (optional). A classic personal access token with public_repo scope.
GITHUB_TOKEN=

# Contact form (optional): formspree, netlify, custom or none
CONTACT_SERVICE=none
CONTACT_ENDPOINT=

# Analytics (optional)
ANALYTICS_ID=
`

// EnvService manages the local env file consumed by the site build.
type EnvService interface {
	// Set merges values into the env file, creating it from the template when absent.
	Set(ctx context.Context, values map[string]string) error
	SetGitHubToken(ctx context.Context, token string) error
	// Values returns the parsed env file, empty when it does not exist.
	Values(ctx context.Context) (map[string]string, error)
	GitHubEnabled(ctx context.Context) bool
}

type envService struct {
	fs       billy.Filesystem
	name     string
	lookup   func(string) (string, bool)
	template string
}

// NewEnvService manages the file name on fs. The process environment takes precedence for GitHubEnabled.
func NewEnvService(fs billy.Filesystem, name string) EnvService {
	return &envService{fs: fs, name: name, lookup: os.LookupEnv, template: envTemplate}
}

func (s *envService) SetGitHubToken(ctx context.Context, token string) error {
	return s.Set(ctx, map[string]string{GitHubTokenKey: strings.TrimSpace(token)})
}

func (s *envService) Set(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	logger.L().Info("update env file", zap.String("file", s.name), zap.Strings("keys", keys))
	if err := ctx.Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "update env canceled")
	}

	content, err := s.read()
	if err != nil {
		return err
	}
	if content == "" {
		content = s.template
	}
	for k, v := range values {
		content = patchEnvLine(content, k, v)
	}

	if err := storage.WriteFileAtomic(s.fs, s.name, []byte(content), 0o600); err != nil {
		logger.L().Error("write env file failed", zap.Error(err))
		return appErr.Wrap(err, appErr.CodeInternal, "Failed to update environment file")
	}
	return nil
}

func (s *envService) Values(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "read env canceled")
	}
	content, err := s.read()
	if err != nil {
		return nil, err
	}
	vals, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "parse env file failed")
	}
	return vals, nil
}

func (s *envService) GitHubEnabled(ctx context.Context) bool {
	if v, ok := s.lookup(GitHubTokenKey); ok && strings.TrimSpace(v) != "" {
		return true
	}
	vals, err := s.Values(ctx)
	if err != nil {
		logger.L().Warn("github status check failed", zap.Error(err))
		return false
	}
	return strings.TrimSpace(vals[GitHubTokenKey]) != ""
}

func (s *envService) read() (string, error) {
	b, err := util.ReadFile(s.fs, s.name)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", appErr.Wrap(err, appErr.CodeInternal, "read env file failed")
	}
	return string(b), nil
}

// patchEnvLine replaces every assignment of key in content, or appends one.
func patchEnvLine(content, key, value string) string {
	line := renderEnvLine(key, value)
	lines := strings.Split(content, "\n")
	found := false
	for i, l := range lines {
		t := strings.TrimSpace(l)
		t = strings.TrimPrefix(t, "export ")
		if strings.HasPrefix(t, key+"=") || strings.HasPrefix(t, key+" =") {
			lines[i] = line
			found = true
		}
	}
	if found {
		return strings.Join(lines, "\n")
	}
	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	return content + line + "\n"
}

func renderEnvLine(key, value string) string {
	if value == "" {
		return key + "="
	}
	out, err := godotenv.Marshal(map[string]string{key: value})
	if err != nil {
		return key + "=" + value
	}
	return out
}
