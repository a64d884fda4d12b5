package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/repository"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockContentRepo struct {
	mock.Mock
}

func (m *mockContentRepo) Load(ctx context.Context, domain models.Domain, dest any) error {
	args := m.Called(ctx, domain, dest)
	return args.Error(0)
}

func (m *mockContentRepo) Store(ctx context.Context, domain models.Domain, value any) error {
	args := m.Called(ctx, domain, value)
	return args.Error(0)
}

func newMemService(t *testing.T) (ContentService, *ModuleWriter) {
	t.Helper()
	repos := repository.NewRepositories(repository.NewContentRepository(memfs.New()))
	mw := NewModuleWriter(memfs.New())
	return NewContentService(repos, mw), mw
}

func TestReadsFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	assert.Equal(t, models.DefaultPersonalInfo(), svc.PersonalInfo(ctx))
	assert.Equal(t, models.DefaultSkills(), svc.Skills(ctx))
	assert.Equal(t, models.DefaultExperience(), svc.Experience(ctx))
	assert.Equal(t, models.DefaultProjects(), svc.Projects(ctx))
	assert.Equal(t, models.DefaultContactConfig(), svc.ContactConfig(ctx))
	assert.Equal(t, models.DefaultResume(), svc.Resume(ctx))
}

func TestUnreadableUnitFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "skills.json", []byte("{not json"), 0o644))

	svc := NewContentService(repository.NewRepositories(repository.NewContentRepository(fs)), nil)
	assert.Equal(t, []string{}, svc.Skills(ctx))
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	info := models.PersonalInfo{
		Name:     "Ada Lovelace",
		Role:     "Engineer",
		Bio:      "First programmer.",
		Email:    "ada@example.com",
		GitHub:   "https://github.com/ada",
		LinkedIn: "https://linkedin.com/in/ada",
	}
	require.NoError(t, svc.SavePersonalInfo(ctx, info))
	assert.Equal(t, info, svc.PersonalInfo(ctx))

	skills := []string{"Go", "Mathematics"}
	require.NoError(t, svc.SaveSkills(ctx, skills))
	assert.Equal(t, skills, svc.Skills(ctx))

	exp := models.Experience{
		WorkExperience: []models.WorkExperience{{Title: "Analyst", Company: "Babbage & Co", Period: "1842 - 1843", Color: models.ColorAccent}},
		Education:      []models.Education{{Degree: "Mathematics", School: "Home", Period: "1830s"}},
	}
	require.NoError(t, svc.SaveExperience(ctx, exp))
	assert.Equal(t, exp, svc.Experience(ctx))

	cfg := models.ContactConfig{Service: models.ContactFormspree, Endpoint: "https://formspree.io/f/xyz"}
	require.NoError(t, svc.SaveContactConfig(ctx, cfg))
	assert.Equal(t, cfg, svc.ContactConfig(ctx))

	meta := models.ResumeMeta{FileName: "resume.pdf", OriginalName: "ada.pdf", Size: 1024}
	require.NoError(t, svc.SaveResume(ctx, meta))
	assert.Equal(t, meta, svc.Resume(ctx))
}

func TestProjectEmptyFeaturesAreDropped(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	svc := NewContentService(repository.NewRepositories(repository.NewContentRepository(fs)), nil)

	in := []models.Project{{Title: "X", Description: "Y", Tags: []string{"a"}, Features: []string{}}}
	require.NoError(t, svc.SaveProjects(ctx, in))

	raw, err := util.ReadFile(fs, "projects.json")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "features")

	got := svc.Projects(ctx)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Features)
	assert.Equal(t, []string{"a"}, got[0].Tags)
}

func TestContactConfigNoneClearsEndpoint(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	require.NoError(t, svc.SaveContactConfig(ctx, models.ContactConfig{Service: models.ContactNone, Endpoint: "https://stale.example"}))
	assert.Equal(t, models.ContactConfig{Service: models.ContactNone}, svc.ContactConfig(ctx))
}

func TestWriteFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockContentRepo)
	repo.On("Store", mock.Anything, models.DomainProjects, mock.Anything).Return(errors.New("disk full"))

	svc := NewContentService(repository.NewRepositories(repo), nil)
	err := svc.SaveProjects(ctx, []models.Project{{Title: "X", Description: "Y", Tags: []string{"a"}}})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	repo.AssertExpectations(t)
}

func TestWriteEmitsModule(t *testing.T) {
	ctx := context.Background()
	modules := memfs.New()
	repos := repository.NewRepositories(repository.NewContentRepository(memfs.New()))
	svc := NewContentService(repos, NewModuleWriter(modules))

	require.NoError(t, svc.SaveSkills(ctx, []string{"Go"}))

	raw, err := util.ReadFile(modules, "skills.ts")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "export const skills: string[] = [")
	assert.Contains(t, string(raw), `"Go"`)
}

func TestExportRendersEveryDomain(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	files, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, files, len(models.AllDomains()))

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	assert.Equal(t, []string{"personal-info.ts", "skills.ts", "experience.ts", "projects.ts", "contact-config.ts", "resume.ts"}, names)
	assert.Contains(t, files[2].Content, "export const workExperience: Experience[] = [];")
	assert.Contains(t, files[2].Content, "export const education: Education[] = [];")
	assert.Contains(t, files[0].Content, `"name": "Your Name"`)
}
