package repository

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-studio/engine/internal/models"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

func TestLoadMissingUnitIsNotFound(t *testing.T) {
	repo := NewContentRepository(memfs.New())

	var got models.PersonalInfo
	err := repo.Load(context.Background(), models.DomainPersonalInfo, &got)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestStoreThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	repo := NewContentRepository(fs)

	in := models.Experience{
		WorkExperience: []models.WorkExperience{{Title: "Engineer", Company: "Analytical Engines", Period: "1842", Color: models.ColorPrimary}},
		Education:      []models.Education{},
	}
	require.NoError(t, repo.Store(ctx, models.DomainExperience, in))

	var out models.Experience
	require.NoError(t, repo.Load(ctx, models.DomainExperience, &out))
	assert.Equal(t, in, out)

	ok, err := util.ReadFile(fs, "experience.json")
	require.NoError(t, err)
	assert.Contains(t, string(ok), `"workExperience"`)
}

func TestStoreReplacesWholeUnitAndLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	repo := NewContentRepository(fs)

	require.NoError(t, repo.Store(ctx, models.DomainSkills, []string{"Go", "Rust", "SQL"}))
	require.NoError(t, repo.Store(ctx, models.DomainSkills, []string{"Go"}))

	var out []string
	require.NoError(t, repo.Load(ctx, models.DomainSkills, &out))
	assert.Equal(t, []string{"Go"}, out)

	entries, err := fs.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "skills.json", entries[0].Name())
}

func TestStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewContentRepository(memfs.New())
	err := repo.Store(ctx, models.DomainSkills, []string{"Go"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
}

func TestTypedRepositories(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewContentRepository(memfs.New()))

	_, err := repos.ContactConfig.Get(ctx)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	cfg := models.ContactConfig{Service: models.ContactFormspree, Endpoint: "https://formspree.io/f/abc"}
	require.NoError(t, repos.ContactConfig.Put(ctx, cfg))

	got, err := repos.ContactConfig.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, models.DomainContactConfig, repos.ContactConfig.Domain())
}
