package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-studio/engine/internal/api"
	"github.com/portfolio-studio/engine/internal/api/handlers"
	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/orchestrator"
	"github.com/portfolio-studio/engine/internal/repository"
	"github.com/portfolio-studio/engine/internal/services"
	"github.com/portfolio-studio/engine/internal/store"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/utils"
)

var (
	_ store.Reader        = (*Client)(nil)
	_ orchestrator.Writer = (*Client)(nil)
	_ store.Reader        = (*Local)(nil)
	_ orchestrator.Writer = (*Local)(nil)
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newServer(t *testing.T) (*Client, billy.Filesystem) {
	t.Helper()
	public := memfs.New()
	repos := repository.NewRepositories(repository.NewContentRepository(memfs.New()))
	content := services.NewContentService(repos, nil)
	srv := httptest.NewServer(api.NewRouter(api.Dependencies{
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		ContentHandler: handlers.NewContentHandler(content),
		ResumeHandler:  handlers.NewResumeHandler(services.NewResumeService(public, 1<<20), 1<<20),
		EnvHandler:     handlers.NewEnvHandler(services.NewEnvService(memfs.New(), ".env.local")),
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL), public
}

func TestClientRoundTripsEveryDomain(t *testing.T) {
	ctx := context.Background()
	c, _ := newServer(t)

	info := models.PersonalInfo{Name: "Ada Lovelace", Role: "Engineer", Bio: "...", Email: "ada@example.com",
		GitHub: "https://github.com/ada", LinkedIn: "https://linkedin.com/in/ada"}
	require.NoError(t, c.SavePersonalInfo(ctx, info))
	require.NoError(t, c.SaveSkills(ctx, []string{"Go"}))
	require.NoError(t, c.SaveExperience(ctx, models.Experience{
		WorkExperience: []models.WorkExperience{{Title: "Dev", Company: "Acme", Period: "2020", Color: models.ColorAccent}},
	}))
	require.NoError(t, c.SaveProjects(ctx, []models.Project{{Title: "X", Description: "Y", Tags: []string{"a"}, Features: []string{}}}))
	require.NoError(t, c.SaveContactConfig(ctx, models.ContactConfig{Service: models.ContactFormspree, Endpoint: "https://formspree.io/f/1"}))
	require.NoError(t, c.SaveResume(ctx, models.ResumeMeta{FileName: "resume.pdf", OriginalName: "cv.pdf", Size: 3}))

	gotInfo, err := c.PersonalInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, info, gotInfo)

	skills, err := c.Skills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, skills)

	exp, err := c.Experience(ctx)
	require.NoError(t, err)
	assert.Len(t, exp.WorkExperience, 1)
	assert.Equal(t, []models.Education{}, exp.Education)

	projects, err := c.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Nil(t, projects[0].Features)

	contact, err := c.ContactConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://formspree.io/f/1", contact.Endpoint)

	resume, err := c.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", resume.FileName)

	files, err := c.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, files, len(models.AllDomains()))
}

func TestClientResumeAndEnv(t *testing.T) {
	ctx := context.Background()
	c, public := newServer(t)

	res, err := c.UploadResume(ctx, "/home/ada/Ada CV.pdf", "application/pdf", samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", res.FileName)
	assert.Equal(t, "Ada CV.pdf", res.OriginalName)
	got, err := util.ReadFile(public, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, samplePDF, got)

	_, err = c.UploadResume(ctx, "cv.txt", "text/plain", []byte("hello"))
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	assert.True(t, IsAPIError(err))
	assert.Contains(t, err.Error(), "Only PDF, DOC, and DOCX")

	require.NoError(t, c.DeleteResume(ctx, "resume.pdf"))
	err = c.DeleteResume(ctx, "resume.pdf")
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	require.NoError(t, c.SetGitHubToken(ctx, "ghp_abc"))
	enabled, err := c.GitHubEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	c.Retry = utils.Backoff{MaxRetries: 1, Delay: time.Millisecond}
	_, err := c.Skills(context.Background())
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	assert.False(t, IsAPIError(err))
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).SaveSkills(context.Background(), []string{"Go"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestLocalWithoutCollaborators(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(repository.NewContentRepository(memfs.New()))
	l := NewLocal(services.NewContentService(repos, nil))

	_, err := l.UploadResume(ctx, "cv.pdf", "application/pdf", samplePDF)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	enabled, err := l.GitHubEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	public := memfs.New()
	l.WithResume(services.NewResumeService(public, 1<<20))
	res, err := l.UploadResume(ctx, "cv.pdf", "application/pdf", samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", res.FileName)
}

func TestBusyServerIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			http.Error(w, `{"success":false,"error":"Too Many Requests","code":"unavailable"}`, http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`{"skills":["Go"]}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Retry = utils.Backoff{MaxRetries: 3, Delay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	skills, err := c.Skills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, skills)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBusyServerGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Retry = utils.Backoff{MaxRetries: 2, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	start := time.Now()
	_, err := c.Skills(context.Background())
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
	assert.Equal(t, int32(3), calls.Load())
	assert.Less(t, time.Since(start), 5*time.Second, "Retry-After is bounded by MaxDelay")
}

func TestRetryAfter(t *testing.T) {
	d, ok := retryAfter("2")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	d, ok = retryAfter(time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)

	_, ok = retryAfter("soon")
	assert.False(t, ok)
}
